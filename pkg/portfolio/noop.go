package portfolio

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) RecordCreated(ctx context.Context, r Record) error { return nil }
func (n *NoopEventSink) RecordUpdated(ctx context.Context, r Record) error { return nil }
func (n *NoopEventSink) RecordDeleted(ctx context.Context, c Collection, id uuid.UUID) error {
	return nil
}

// LoggingEventSink writes one structured log line per gateway write.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

// RecordCreated logs the insert
func (l *LoggingEventSink) RecordCreated(ctx context.Context, r Record) error {
	l.logger.InfoContext(ctx, "record created", "collection", r.Collection(), "id", r.RecordID())
	return nil
}

// RecordUpdated logs the update
func (l *LoggingEventSink) RecordUpdated(ctx context.Context, r Record) error {
	l.logger.InfoContext(ctx, "record updated", "collection", r.Collection(), "id", r.RecordID())
	return nil
}

// RecordDeleted logs the delete
func (l *LoggingEventSink) RecordDeleted(ctx context.Context, c Collection, id uuid.UUID) error {
	l.logger.InfoContext(ctx, "record deleted", "collection", c, "id", id)
	return nil
}
