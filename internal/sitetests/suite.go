package sitetests

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/attackbuild/internal/catalog"
	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/hooks"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
)

// Result is the outcome of a single test.
type Result struct {
	Name    string
	Passed  bool
	Skipped bool
	Lines   []string
}

// Selection returns the tests to run: the requested ones, or every test
// except external_links when none were requested.
func Selection(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	out := make([]string, 0, len(catalog.TestNames))
	for _, name := range catalog.TestNames {
		if name != catalog.TestExternalLinks {
			out = append(out, name)
		}
	}
	return out
}

// Suite runs the selected tests against the generated site.
type Suite struct {
	cfg        config.TestsConfig
	paths      config.PathsConfig
	tests      []string
	printTests bool
	executor   *hooks.Executor
	outcome    *Outcome
	out        io.Writer
	logger     *slog.Logger
}

// Options configure a Suite.
type Options struct {
	Tests      []string // requested tests; empty selects the defaults
	PrintTests bool     // print full reports regardless of length
	Executor   *hooks.Executor
	Outcome    *Outcome
	Out        io.Writer
	Logger     *slog.Logger
}

// NewSuite creates a Suite for the configured paths.
func NewSuite(cfg config.TestsConfig, paths config.PathsConfig, opts Options) *Suite {
	s := &Suite{
		cfg:        cfg,
		paths:      paths,
		tests:      Selection(opts.Tests),
		printTests: opts.PrintTests,
		executor:   opts.Executor,
		outcome:    opts.Outcome,
		out:        opts.Out,
		logger:     opts.Logger,
	}
	if s.outcome == nil {
		s.outcome = &Outcome{}
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.executor == nil {
		s.executor = hooks.NewExecutor(hooks.Environment{}, hooks.WithLogger(s.logger))
	}
	return s
}

// Tests returns the selected test names.
func (s *Suite) Tests() []string { return append([]string(nil), s.tests...) }

// Run executes every selected test and reports it. Failed tests are recorded
// in the Outcome; only an inability to run a test is returned.
func (s *Suite) Run(ctx context.Context) error {
	for _, name := range s.tests {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.run(ctx, name)
		if err != nil {
			return err
		}
		if err := s.report(res); err != nil {
			return err
		}
		if !res.Passed && !res.Skipped {
			s.outcome.Fail(name)
		}
	}
	return nil
}

func (s *Suite) run(ctx context.Context, name string) (Result, error) {
	s.logger.Debug("Running site test", logfields.Test(name))
	switch name {
	case catalog.TestSize:
		return s.checkSize()
	case catalog.TestCitations:
		return s.checkCitations()
	case catalog.TestLinks:
		return s.checkHook(ctx, name, s.cfg.Links)
	case catalog.TestExternalLinks:
		return s.checkHook(ctx, name, s.cfg.ExternalLinks)
	default:
		return Result{}, errors.ValidationError("unknown test").WithContext("test", name).Build()
	}
}

// checkHook runs an external checker. A non-zero exit means the checker
// found problems; its output becomes the report.
func (s *Suite) checkHook(ctx context.Context, name string, cmd config.CommandConfig) (Result, error) {
	res := Result{Name: name}
	if !cmd.Configured() {
		s.logger.Warn("No checker configured, skipping test", logfields.Test(name))
		res.Skipped = true
		return res, nil
	}
	out, err := s.executor.Output(ctx, name, cmd)
	res.Lines = splitLines(string(out))
	if err != nil {
		if _, ok := hooks.ExitCode(err); ok {
			return res, nil
		}
		return res, err
	}
	res.Passed = true
	return res, nil
}

// report prints a result. Reports longer than the configured limit are
// written to the reports directory unless full printing was requested.
func (s *Suite) report(res Result) error {
	status := "PASSED"
	switch {
	case res.Skipped:
		status = "SKIPPED"
	case !res.Passed:
		status = "FAILED"
	}

	if len(res.Lines) > s.cfg.MaxPrintedLines && !s.printTests {
		path := filepath.Join(s.paths.Reports, res.Name+"-report.txt")
		if err := writeReport(path, res.Lines); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(s.out, "%s: %s (%d lines, report written to %s)\n", res.Name, status, len(res.Lines), path)
		return nil
	}

	_, _ = fmt.Fprintf(s.out, "%s: %s\n", res.Name, status)
	for _, line := range res.Lines {
		_, _ = fmt.Fprintf(s.out, "  %s\n", line)
	}
	return nil
}

func writeReport(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create reports directory").
			Path(filepath.Dir(path)).
			Build()
	}
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write test report").
			Path(path).
			Build()
	}
	return nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
