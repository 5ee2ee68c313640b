package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/attackbuild/internal/eventstore"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/metrics"
	"git.home.luguber.info/inful/attackbuild/internal/modules"
	"git.home.luguber.info/inful/attackbuild/internal/report"
)

type recordingReporter struct {
	lines []string
	ends  map[string]time.Duration
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{ends: map[string]time.Duration{}}
}

func (r *recordingReporter) PrintStart(name string) {
	r.lines = append(r.lines, "start "+name)
}

func (r *recordingReporter) PrintEnd(name string, start, end time.Time) {
	r.lines = append(r.lines, "end "+name)
	r.ends[name] = end.Sub(start)
}

// tickingClock advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

type countingRecorder struct {
	metrics.NoopRecorder
	results  map[string]metrics.ResultLabel
	outcomes []metrics.BuildOutcomeLabel
}

func (c *countingRecorder) IncModuleResult(module string, result metrics.ResultLabel) {
	c.results[module] = result
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	c.outcomes = append(c.outcomes, o)
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunExecutesInOrderAndPrintsTotal(t *testing.T) {
	var calls []string
	action := func(name string) modules.Action {
		return func(context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}
	pool := []modules.Descriptor{
		{Name: "clean", Run: action("clean")},
		{Name: "techniques", Run: action("techniques")},
	}

	rep := newRecordingReporter()
	r := New(rep, WithClock(tickingClock()), WithLogger(quietLogger()))
	require.NoError(t, r.Run(t.Context(), pool))

	assert.Equal(t, []string{"clean", "techniques"}, calls)
	assert.Equal(t, []string{
		"start clean", "end clean",
		"start techniques", "end techniques",
		"end " + report.TotalLabel,
	}, rep.lines)
	assert.Equal(t, time.Second, rep.ends["clean"])
	// build start, then start/end for each module, then build end
	assert.Equal(t, 5*time.Second, rep.ends[report.TotalLabel])
}

func TestRunFailingModuleAbortsBuild(t *testing.T) {
	var calls []string
	boom := stderrors.New("boom")
	pool := []modules.Descriptor{
		{Name: "A", Run: func(context.Context) error { calls = append(calls, "A"); return nil }},
		{Name: "B", Run: func(context.Context) error { calls = append(calls, "B"); return boom }},
		{Name: "C", Run: func(context.Context) error { calls = append(calls, "C"); return nil }},
	}

	rep := newRecordingReporter()
	rec := &countingRecorder{results: map[string]metrics.ResultLabel{}}
	r := New(rep, WithRecorder(rec), WithLogger(quietLogger()))
	err := r.Run(t.Context(), pool)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, errors.HasCategory(err, errors.CategoryModule))
	classified, _ := errors.AsClassified(err)
	module, _ := classified.Context().GetString("module")
	assert.Equal(t, "B", module)

	assert.Equal(t, []string{"A", "B"}, calls)
	assert.Equal(t, []string{"start A", "end A", "start B"}, rep.lines)
	assert.NotContains(t, rep.ends, report.TotalLabel)

	assert.Equal(t, metrics.ResultSuccess, rec.results["A"])
	assert.Equal(t, metrics.ResultFailed, rec.results["B"])
	assert.NotContains(t, rec.results, "C")
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeFailed}, rec.outcomes)
}

func TestRunEmptyPool(t *testing.T) {
	rep := newRecordingReporter()
	r := New(rep, WithLogger(quietLogger()))
	require.NoError(t, r.Run(t.Context(), nil))

	assert.Equal(t, []string{"end " + report.TotalLabel}, rep.lines)
	assert.GreaterOrEqual(t, rep.ends[report.TotalLabel], time.Duration(0))
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	pool := []modules.Descriptor{
		{Name: "clean", Run: func(context.Context) error { cancel(); return nil }},
		{Name: "techniques", Run: func(context.Context) error {
			t.Fatal("module after cancellation must not run")
			return nil
		}},
	}

	rep := newRecordingReporter()
	err := New(rep, WithLogger(quietLogger())).Run(ctx, pool)

	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRuntime))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, rep.ends, report.TotalLabel)
}

func TestRunRecordsHistory(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	pool := []modules.Descriptor{
		{Name: "clean", Run: func(context.Context) error { return nil }},
		{Name: "tests", Run: func(context.Context) error { return fmt.Errorf("exit status 1") }},
	}
	r := New(newRecordingReporter(), WithHistory(store, "b-1"), WithLogger(quietLogger()))
	require.Error(t, r.Run(t.Context(), pool))

	events, err := store.GetByBuildID(t.Context(), "b-1")
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type())
	}
	assert.Equal(t, []string{
		eventstore.TypeModuleStarted,
		eventstore.TypeModuleFinished,
		eventstore.TypeModuleStarted,
		eventstore.TypeModuleFailed,
		eventstore.TypeBuildCompleted,
	}, types)
}

type failingStore struct{ eventstore.NoopStore }

func (failingStore) Append(context.Context, eventstore.Event) error {
	return stderrors.New("disk full")
}

func TestRunHistoryFailureIsNotFatal(t *testing.T) {
	ran := false
	pool := []modules.Descriptor{{Name: "clean", Run: func(context.Context) error { ran = true; return nil }}}

	r := New(newRecordingReporter(), WithHistory(failingStore{}, "b-2"), WithLogger(quietLogger()))
	require.NoError(t, r.Run(t.Context(), pool))
	assert.True(t, ran)
}

func TestRunLogsPreviousDuration(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	pool := []modules.Descriptor{{Name: "clean", Run: func(context.Context) error { return nil }}}
	first := New(newRecordingReporter(), WithHistory(store, "b-1"), WithClock(tickingClock()), WithLogger(quietLogger()))
	require.NoError(t, first.Run(t.Context(), pool))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	second := New(newRecordingReporter(), WithHistory(store, "b-2"), WithLogger(logger))
	require.NoError(t, second.Run(t.Context(), pool))

	assert.Contains(t, logs.String(), "previous_duration_ms=")
}
