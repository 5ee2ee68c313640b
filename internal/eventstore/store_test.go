package eventstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

const testBuildID = "build-123"

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	at := time.UnixMilli(1_700_000_000_123)

	started, err := NewModuleStarted(testBuildID, "techniques", at)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	finished, err := NewModuleFinished(testBuildID, "techniques", at.Add(2*time.Second), 2*time.Second)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	for _, e := range []Event{started, finished} {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	events, err := store.GetByBuildID(ctx, testBuildID)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type() != TypeModuleStarted || events[1].Type() != TypeModuleFinished {
		t.Errorf("unexpected event order: %s, %s", events[0].Type(), events[1].Type())
	}
	if !events[0].Timestamp().Equal(at) {
		t.Errorf("expected millisecond timestamp %v, got %v", at, events[0].Timestamp())
	}
	if events[0].ID() == 0 {
		t.Error("expected store-assigned id")
	}

	payload, err := DecodeModule(events[1])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Module != "techniques" || payload.DurationMS != 2000 {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestEventStoreSeparatesBuilds(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	now := time.Now()

	e1, _ := NewModuleStarted("build-a", "clean", now)
	e2, _ := NewModuleStarted("build-b", "clean", now)
	_ = store.Append(ctx, e1)
	_ = store.Append(ctx, e2)

	events, err := store.GetByBuildID(ctx, "build-a")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].BuildID() != "build-a" {
		t.Fatalf("expected only build-a events, got %d", len(events))
	}
}

func TestEventStoreGetRange(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		e, _ := NewModuleStarted(testBuildID, "m", base.Add(time.Duration(i)*time.Hour))
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := store.GetRange(ctx, base.Add(30*time.Minute), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events in range, got %d", len(events))
	}
}

func TestModuleFailedPayload(t *testing.T) {
	e, err := NewModuleFailed(testBuildID, "stix_data", time.Now(), time.Second, errors.New("clone failed"))
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	p, err := DecodeModule(e)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Error != "clone failed" {
		t.Errorf("expected error in payload, got %q", p.Error)
	}
}

func TestEventStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	e, _ := NewBuildCompleted(testBuildID, time.Now(), nil, time.Second, "success")
	if err := store.Append(t.Context(), e); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	events, err := reopened.GetByBuildID(t.Context(), testBuildID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Type() != TypeBuildCompleted {
		t.Fatalf("expected persisted BuildCompleted event, got %v", events)
	}
}

func TestNoopStore(t *testing.T) {
	var s Store = NoopStore{}
	e, _ := NewModuleStarted(testBuildID, "clean", time.Now())
	if err := s.Append(t.Context(), e); err != nil {
		t.Fatalf("noop append: %v", err)
	}
	events, _ := s.GetByBuildID(t.Context(), testBuildID)
	if len(events) != 0 {
		t.Fatalf("noop store must not return events")
	}
}

func TestLastModuleDuration(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	at := time.UnixMilli(1_700_000_000_000)

	if _, found, err := store.LastModuleDuration(ctx, "techniques"); err != nil || found {
		t.Fatalf("expected no history, got found=%v err=%v", found, err)
	}

	events := []func() (*BaseEvent, error){
		func() (*BaseEvent, error) { return NewModuleFinished("b1", "techniques", at, 4*time.Second) },
		func() (*BaseEvent, error) { return NewModuleFinished("b2", "techniques", at.Add(time.Minute), 3*time.Second) },
		func() (*BaseEvent, error) {
			return NewModuleFailed("b3", "techniques", at.Add(2*time.Minute), time.Second, errors.New("boom"))
		},
		func() (*BaseEvent, error) { return NewModuleFinished("b3", "tactics", at.Add(2*time.Minute), 9*time.Second) },
	}
	for _, build := range events {
		e, err := build()
		if err != nil {
			t.Fatalf("new event: %v", err)
		}
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	d, found, err := store.LastModuleDuration(ctx, "techniques")
	if err != nil || !found {
		t.Fatalf("expected history, got found=%v err=%v", found, err)
	}
	if d != 3*time.Second {
		t.Errorf("expected last successful duration 3s, got %v", d)
	}

	byBuild, err := store.GetByBuildID(ctx, "b3")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(byBuild) != 2 || byBuild[0].Module() != "techniques" || byBuild[1].Module() != "tactics" {
		t.Errorf("expected module column round trip, got %v", byBuild)
	}
}
