package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS build_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	module TEXT NOT NULL DEFAULT '',
	timestamp_ms INTEGER NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_build_events_build_id ON build_events(build_id);
CREATE INDEX IF NOT EXISTS idx_build_events_module ON build_events(module, event_type);
CREATE INDEX IF NOT EXISTS idx_build_events_timestamp ON build_events(timestamp_ms);
`

const selectEvents = "SELECT id, build_id, event_type, module, timestamp_ms, payload FROM build_events"

// SQLiteStore keeps build history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) a history database.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// ":memory:" databases exist per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO build_events (build_id, event_type, module, timestamp_ms, payload) VALUES (?, ?, ?, ?, ?)",
		e.BuildID(), e.Type(), e.Module(), e.Timestamp().UnixMilli(), e.Payload(),
	)
	if err != nil {
		return fmt.Errorf("record %s event: %w", e.Type(), err)
	}
	return nil
}

func (s *SQLiteStore) GetByBuildID(ctx context.Context, buildID string) ([]Event, error) {
	return s.query(ctx, selectEvents+" WHERE build_id = ? ORDER BY id", buildID)
}

func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	return s.query(ctx, selectEvents+" WHERE timestamp_ms BETWEEN ? AND ? ORDER BY id",
		start.UnixMilli(), end.UnixMilli())
}

// LastModuleDuration returns how long the most recent successful run of
// module took.
func (s *SQLiteStore) LastModuleDuration(ctx context.Context, module string) (time.Duration, bool, error) {
	events, err := s.query(ctx, selectEvents+" WHERE module = ? AND event_type = ? ORDER BY id DESC LIMIT 1",
		module, TypeModuleFinished)
	if err != nil || len(events) == 0 {
		return 0, false, err
	}
	p, err := DecodeModule(events[0])
	if err != nil {
		return 0, false, err
	}
	return time.Duration(p.DurationMS) * time.Millisecond, true, nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e BaseEvent
		var ts int64
		if err := rows.Scan(&e.EventID, &e.EventBuildID, &e.EventType, &e.EventModule, &ts, &e.EventPayload); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		e.EventTimestamp = time.UnixMilli(ts)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return events, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
