// Package stixdata prepares the STIX bundles the page generators read: it
// keeps a checkout of the CTI repository and copies the configured bundles
// into the data directory, rewriting absolute site links.
package stixdata

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/git"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
)

// Dir is the subdirectory of the data directory holding the bundles.
const Dir = "stix"

// Options are the command line switches that affect STIX preparation.
type Options struct {
	Refresh               bool
	NoStixLinkReplacement bool
	Proxy                 string
}

// Preparer syncs the CTI checkout and publishes bundles.
type Preparer struct {
	cfg     config.StixConfig
	dataDir string
	opts    Options
	client  *git.Client
	logger  *slog.Logger
}

// New creates a Preparer writing into dataDir.
func New(cfg config.StixConfig, dataDir string, opts Options, progress io.Writer, logger *slog.Logger) *Preparer {
	if logger == nil {
		logger = slog.Default()
	}
	gitOpts := []git.Option{git.WithLogger(logger), git.WithProgress(progress)}
	if opts.Proxy != "" {
		gitOpts = append(gitOpts, git.WithProxy(opts.Proxy))
	}
	return &Preparer{
		cfg:     cfg,
		dataDir: dataDir,
		opts:    opts,
		client:  git.NewClient(gitOpts...),
		logger:  logger,
	}
}

// Run refreshes the checkout when requested or missing, then copies bundles.
func (p *Preparer) Run(ctx context.Context) error {
	if p.opts.Refresh || !git.Exists(p.cfg.Checkout) {
		src := git.Source{URL: p.cfg.Repository, Branch: p.cfg.Branch, Depth: p.cfg.Depth}
		if _, err := p.client.Sync(ctx, src, p.cfg.Checkout); err != nil {
			return err
		}
	} else {
		p.logger.Info("Using existing STIX checkout", logfields.Path(p.cfg.Checkout))
	}

	target := filepath.Join(p.dataDir, Dir)
	if err := os.MkdirAll(target, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create STIX data directory").
			Path(target).
			Build()
	}

	for _, bundle := range p.cfg.Bundles {
		if err := p.publish(bundle, target); err != nil {
			return err
		}
	}
	p.logger.Info("STIX bundles published", logfields.Count(len(p.cfg.Bundles)), logfields.Path(target))
	return nil
}

func (p *Preparer) publish(bundle, target string) error {
	src := filepath.Join(p.cfg.Checkout, filepath.FromSlash(bundle))
	// #nosec G304 -- bundle paths come from the build configuration
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read STIX bundle").
			Fatal().
			Path(src).
			Build()
	}
	if !p.opts.NoStixLinkReplacement {
		data = RewriteLinks(data, p.cfg.SiteURL)
	}

	dst := filepath.Join(target, filepath.Base(src))
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write STIX bundle").
			Path(dst).
			Build()
	}
	p.logger.Debug("Published STIX bundle", logfields.Path(dst))
	return nil
}

// RewriteLinks replaces absolute links under siteURL with site-relative
// ones, so "https://attack.mitre.org/techniques/T1001" becomes
// "/techniques/T1001". JSON-escaped slashes are handled too.
func RewriteLinks(data []byte, siteURL string) []byte {
	if siteURL == "" {
		return data
	}
	base := strings.TrimSuffix(siteURL, "/")
	data = bytes.ReplaceAll(data, []byte(base+"/"), []byte("/"))

	escaped := strings.ReplaceAll(base, "/", `\/`)
	return bytes.ReplaceAll(data, []byte(escaped+`\/`), []byte(`\/`))
}
