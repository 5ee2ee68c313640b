package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyModule     = "module"
	KeyPriority   = "priority"
	KeyTest       = "test"
	KeyDurationMS = "duration_ms"
	KeyPreviousMS = "previous_duration_ms"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyCommand    = "command"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr  { return slog.String(KeyBuildID, id) }
func Module(name string) slog.Attr { return slog.String(KeyModule, name) }
func Priority(p int) slog.Attr     { return slog.Int(KeyPriority, p) }
func Test(name string) slog.Attr   { return slog.String(KeyTest, name) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr       { return slog.String(KeyURL, u) }
func Command(c string) slog.Attr   { return slog.String(KeyCommand, c) }
func Count(n int) slog.Attr        { return slog.Int(KeyCount, n) }

func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}

// PreviousDuration is the duration of the last successful run of a module.
func PreviousDuration(d time.Duration) slog.Attr {
	return slog.Float64(KeyPreviousMS, float64(d)/float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
