package eventstore

import (
	"context"
	"time"
)

// Store persists build history events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, e Event) error

	// GetByBuildID retrieves all events for a specific build, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

// NoopStore discards events (default when no history database is configured).
type NoopStore struct{}

func (NoopStore) Append(context.Context, Event) error                             { return nil }
func (NoopStore) GetByBuildID(context.Context, string) ([]Event, error)           { return nil, nil }
func (NoopStore) GetRange(context.Context, time.Time, time.Time) ([]Event, error) { return nil, nil }
func (NoopStore) Close() error                                                    { return nil }

// DurationHistory is implemented by stores that can report how long a
// module took on its last successful run.
type DurationHistory interface {
	LastModuleDuration(ctx context.Context, module string) (time.Duration, bool, error)
}
