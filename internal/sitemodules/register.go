// Package sitemodules binds every build module name to its action and
// registers them in execution order.
package sitemodules

import (
	"context"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/attackbuild/internal/catalog"
	"git.home.luguber.info/inful/attackbuild/internal/cli"
	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/hooks"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
	"git.home.luguber.info/inful/attackbuild/internal/modules"
	"git.home.luguber.info/inful/attackbuild/internal/sitetests"
	"git.home.luguber.info/inful/attackbuild/internal/stixdata"
)

// Deps are the collaborators module actions need.
type Deps struct {
	Options *cli.Options
	Config  *config.Config
	Outcome *sitetests.Outcome
	Out     io.Writer
	Logger  *slog.Logger
}

// menuURLs lists the modules shown in site navigation.
var menuURLs = map[string]string{
	catalog.Resources:   "/resources/",
	catalog.Contribute:  "/resources/contribute/",
	catalog.Groups:      "/groups/",
	catalog.Matrices:    "/matrices/",
	catalog.Mitigations: "/mitigations/",
	catalog.Software:    "/software/",
	catalog.Tactics:     "/tactics/",
	catalog.Techniques:  "/techniques/",
}

type binder struct {
	deps     Deps
	reg      *modules.Registry
	executor *hooks.Executor
}

// Register adds every module to reg with its catalog priority.
func Register(reg *modules.Registry, deps Deps) error {
	if deps.Options == nil || deps.Config == nil {
		return errors.InternalError("module registration requires options and config").Build()
	}
	if deps.Outcome == nil {
		deps.Outcome = &sitetests.Outcome{}
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	b := &binder{deps: deps, reg: reg}
	b.executor = hooks.NewExecutor(b.environment(), hooks.WithOutput(deps.Out, deps.Out), hooks.WithLogger(deps.Logger))

	for _, name := range catalog.ModuleNames {
		url, visible := menuURLs[name]
		d := modules.Descriptor{
			Name:        name,
			Priority:    catalog.Priority(name),
			Run:         b.action(name),
			MenuVisible: visible,
			MenuURL:     url,
		}
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func (b *binder) environment() hooks.Environment {
	return hooks.Environment{
		Refresh:               b.deps.Options.Refresh,
		NoStixLinkReplacement: b.deps.Options.NoStixLinkReplacement,
		Proxy:                 b.deps.Options.Proxy,
		ContentDir:            b.deps.Config.Paths.Content,
		OutputDir:             b.deps.Config.Paths.Output,
		DataDir:               b.deps.Config.Paths.Data,
	}
}

func (b *binder) action(name string) modules.Action {
	switch name {
	case catalog.Clean:
		return b.clean
	case catalog.StixData:
		return b.stixData
	case catalog.WebsiteBuild:
		return b.websiteBuild
	case catalog.Tests:
		return b.tests
	default:
		return b.generator(name)
	}
}

func (b *binder) stixData(ctx context.Context) error {
	opts := stixdata.Options{
		Refresh:               b.deps.Options.Refresh,
		NoStixLinkReplacement: b.deps.Options.NoStixLinkReplacement,
		Proxy:                 b.deps.Options.Proxy,
	}
	return stixdata.New(b.deps.Config.Stix, b.deps.Config.Paths.Data, opts, b.deps.Out, b.deps.Logger).Run(ctx)
}

func (b *binder) generator(name string) modules.Action {
	return func(ctx context.Context) error {
		cmd, ok := b.deps.Config.Generators[name]
		if !ok || !cmd.Configured() {
			b.deps.Logger.Warn("No generator configured, skipping", logfields.Module(name))
			return nil
		}
		return b.executor.Run(ctx, name, cmd)
	}
}

func (b *binder) tests(ctx context.Context) error {
	suite := sitetests.NewSuite(b.deps.Config.Tests, b.deps.Config.Paths, sitetests.Options{
		Tests:      b.deps.Options.Tests,
		PrintTests: b.deps.Options.PrintTests,
		Executor:   b.executor,
		Outcome:    b.deps.Outcome,
		Out:        b.deps.Out,
		Logger:     b.deps.Logger,
	})
	return suite.Run(ctx)
}
