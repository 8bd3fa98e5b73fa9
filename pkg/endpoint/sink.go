package endpoint

import "context"

// LogEntry is one `log()` call from a snippet. The sink adds the
// timestamp, log type, and database columns on insert.
type LogEntry struct {
	Level      string
	Message    string
	UserID     string
	RecordID   string
	RecordName string
}

// LogSink persists snippet log calls, one row per call.
type LogSink interface {
	Log(ctx context.Context, entry LogEntry) error
}

// NopSink discards entries. Used in tests and when no database is wired.
type NopSink struct{}

func (NopSink) Log(context.Context, LogEntry) error { return nil }
