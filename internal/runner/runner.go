package runner

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/attackbuild/internal/eventstore"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
	"git.home.luguber.info/inful/attackbuild/internal/metrics"
	"git.home.luguber.info/inful/attackbuild/internal/modules"
	"git.home.luguber.info/inful/attackbuild/internal/report"
)

// Reporter receives progress lines. report.Printer implements it.
type Reporter interface {
	PrintStart(name string)
	PrintEnd(name string, start, end time.Time)
}

// Runner invokes module actions in order.
type Runner struct {
	reporter Reporter
	recorder metrics.Recorder
	history  eventstore.Store
	buildID  string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(rn *Runner) {
		if r != nil {
			rn.recorder = r
		}
	}
}

// WithHistory records module events for buildID in store.
func WithHistory(store eventstore.Store, buildID string) Option {
	return func(rn *Runner) {
		if store != nil {
			rn.history = store
			rn.buildID = buildID
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(rn *Runner) {
		if l != nil {
			rn.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(rn *Runner) {
		if now != nil {
			rn.now = now
		}
	}
}

// New creates a Runner reporting through reporter.
func New(reporter Reporter, opts ...Option) *Runner {
	r := &Runner{
		reporter: reporter,
		recorder: metrics.NoopRecorder{},
		history:  eventstore.NoopStore{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every descriptor in pool, in order.
func (r *Runner) Run(ctx context.Context, pool []modules.Descriptor) error {
	buildStart := r.now()
	ran := make([]string, 0, len(pool))

	for _, d := range pool {
		if err := ctx.Err(); err != nil {
			r.recorder.IncModuleResult(d.Name, metrics.ResultCanceled)
			r.finishBuild(ctx, buildStart, r.now(), ran, metrics.BuildOutcomeCanceled)
			return errors.WrapError(err, errors.CategoryRuntime, "build canceled").
				Fatal().
				Module(d.Name).
				Build()
		}

		if err := r.runModule(ctx, d); err != nil {
			r.finishBuild(ctx, buildStart, r.now(), ran, metrics.BuildOutcomeFailed)
			return err
		}
		ran = append(ran, d.Name)
	}

	buildEnd := r.now()
	r.reporter.PrintEnd(report.TotalLabel, buildStart, buildEnd)
	r.finishBuild(ctx, buildStart, buildEnd, ran, metrics.BuildOutcomeSuccess)
	return nil
}

func (r *Runner) runModule(ctx context.Context, d modules.Descriptor) error {
	r.reporter.PrintStart(d.Name)
	start := r.now()
	r.logger.Debug("Module started", r.startAttrs(ctx, d)...)
	r.record(ctx, func() (eventstore.Event, error) {
		return eventstore.NewModuleStarted(r.buildID, d.Name, start)
	})

	err := d.Run(ctx)
	end := r.now()
	elapsed := end.Sub(start)
	r.recorder.ObserveModuleDuration(d.Name, elapsed)

	if err != nil {
		r.recorder.IncModuleResult(d.Name, metrics.ResultFailed)
		r.logger.Error("Module failed", logfields.Module(d.Name), logfields.Duration(elapsed), logfields.Error(err))
		r.record(ctx, func() (eventstore.Event, error) {
			return eventstore.NewModuleFailed(r.buildID, d.Name, end, elapsed, err)
		})
		return errors.WrapError(err, errors.CategoryModule, "module "+d.Name+" failed").
			Fatal().
			Module(d.Name).
			Build()
	}

	r.recorder.IncModuleResult(d.Name, metrics.ResultSuccess)
	r.logger.Debug("Module finished", logfields.Module(d.Name), logfields.Duration(elapsed))
	r.record(ctx, func() (eventstore.Event, error) {
		return eventstore.NewModuleFinished(r.buildID, d.Name, end, elapsed)
	})
	r.reporter.PrintEnd(d.Name, start, end)
	return nil
}

// startAttrs describes a starting module, including its last successful
// duration when the history store knows it.
func (r *Runner) startAttrs(ctx context.Context, d modules.Descriptor) []any {
	attrs := []any{logfields.Module(d.Name), logfields.Priority(d.Priority)}
	h, ok := r.history.(eventstore.DurationHistory)
	if !ok {
		return attrs
	}
	prev, found, err := h.LastModuleDuration(ctx, d.Name)
	if err != nil {
		r.logger.Debug("Module history lookup failed", logfields.Module(d.Name), logfields.Error(err))
		return attrs
	}
	if found {
		attrs = append(attrs, logfields.PreviousDuration(prev))
	}
	return attrs
}

func (r *Runner) finishBuild(ctx context.Context, start, end time.Time, ran []string, outcome metrics.BuildOutcomeLabel) {
	r.recorder.ObserveBuildDuration(end.Sub(start))
	r.recorder.IncBuildOutcome(outcome)
	r.record(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildCompleted(r.buildID, end, ran, end.Sub(start), string(outcome))
	})
}

// record appends a history event. History is best effort: failures are logged
// and never abort the build.
func (r *Runner) record(ctx context.Context, build func() (eventstore.Event, error)) {
	e, err := build()
	if err == nil {
		err = r.history.Append(context.WithoutCancel(ctx), e)
	}
	if err != nil {
		r.logger.Warn("Failed to record build history", logfields.BuildID(r.buildID), logfields.Error(err))
	}
}
