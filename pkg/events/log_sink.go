package events

import (
	"context"
	"log/slog"
	"sync"
)

// LogSink writes each event as one structured log line. Duplicate
// idempotency keys are logged once.
type LogSink struct {
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, seen: make(map[string]struct{})}
}

// Append implements EventSink.
func (s *LogSink) Append(ctx context.Context, e Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if _, dup := s.seen[e.IdempotencyKey]; dup && e.IdempotencyKey != "" {
		s.mu.Unlock()
		return nil
	}
	s.seen[e.IdempotencyKey] = struct{}{}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "event",
		"event_id", e.ID,
		"event_type", e.Type,
		"source", e.Source,
		"version", e.Version,
		"idempotency_key", e.IdempotencyKey,
		"workflow_id", e.WorkflowID,
		"run_id", e.RunID,
		"request_id", e.RequestID,
		slog.Any("payload", e.Payload),
	)
	return nil
}
