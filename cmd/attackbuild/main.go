// Command attackbuild builds the ATT&CK website by running its build modules
// in order.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/attackbuild/internal/cli"
	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/eventstore"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
	"git.home.luguber.info/inful/attackbuild/internal/metrics"
	"git.home.luguber.info/inful/attackbuild/internal/modules"
	"git.home.luguber.info/inful/attackbuild/internal/report"
	"git.home.luguber.info/inful/attackbuild/internal/runner"
	"git.home.luguber.info/inful/attackbuild/internal/sitemodules"
	"git.home.luguber.info/inful/attackbuild/internal/sitetests"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one build and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args, cli.WithOutput(stdout, stderr))
	if err != nil {
		// kong already printed usage; no logger is configured yet.
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		return errors.NewCLIErrorAdapter(false, quiet).WithOutput(stderr).Report(err)
	}

	cfg, err := config.Load(opts.Config, opts.ConfigExplicit())
	if err != nil {
		logger := config.Default().Logging.NewLogger(stderr, opts.Verbose)
		return errors.NewCLIErrorAdapter(opts.Verbose, logger).WithOutput(stderr).Report(err)
	}

	buildID := uuid.NewString()
	logger := cfg.Logging.NewLogger(stderr, opts.Verbose).With(logfields.BuildID(buildID))
	slog.SetDefault(logger)
	adapter := errors.NewCLIErrorAdapter(opts.Verbose, logger).WithOutput(stderr)

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if cfg.Metrics.Textfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	var history eventstore.Store = eventstore.NoopStore{}
	if cfg.History.Database != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.Database)
		if err != nil {
			// History is optional; a broken database never blocks a build.
			logger.Warn("Build history disabled", logfields.Path(cfg.History.Database), logfields.Error(err))
		} else {
			history = store
			defer func() {
				if cerr := store.Close(); cerr != nil {
					logger.Warn("Failed to close build history", logfields.Error(cerr))
				}
			}()
		}
	}

	outcome := &sitetests.Outcome{}
	reg := modules.NewRegistry()
	if err := sitemodules.Register(reg, sitemodules.Deps{
		Options: opts,
		Config:  cfg,
		Outcome: outcome,
		Out:     stdout,
		Logger:  logger,
	}); err != nil {
		return adapter.Report(err)
	}

	if len(opts.Modules) > 0 {
		reg.RemoveFromBuild(opts.Modules)
	}
	logger.Debug("Starting build", logfields.Count(len(reg.RunPool())))

	printer := report.NewPrinter(stdout, stdout == os.Stdout)
	r := runner.New(printer,
		runner.WithRecorder(recorder),
		runner.WithHistory(history, buildID),
		runner.WithLogger(logger),
	)
	runErr := r.Run(ctx, reg.RunPool())

	if prom != nil {
		if err := prom.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}

	return exitCode(adapter, runErr, outcome, opts.OverrideExitStatus)
}

// exitCode maps the build result to a process status. Module failures use
// the error's category; failed site tests exit 1 unless overridden.
func exitCode(adapter *errors.CLIErrorAdapter, runErr error, outcome *sitetests.Outcome, override bool) int {
	if runErr != nil {
		return adapter.Report(runErr)
	}
	if outcome.Failed() && !override {
		failed := errors.TestError("site tests failed").
			WithContext("tests", outcome.FailedTests()).
			Build()
		return adapter.Report(failed)
	}
	return errors.ExitSuccess
}
