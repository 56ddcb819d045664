// Package events defines the envelope that wraps domain events and the sink
// they are appended to.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CurrentVersion is the envelope schema version stamped on new events.
const CurrentVersion = "1.0.0"

// Envelope wraps a domain event with routing and correlation metadata.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event, e.g. "grading.answer_graded".
	Type string `json:"type"`

	// Source names the emitting component, e.g. "grading-activity".
	Source string `json:"source"`

	// Version is the schema version of Payload.
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey is stable across activity retries so consumers can
	// drop duplicates.
	IdempotencyKey string `json:"idempotency_key"`

	// WorkflowID and RunID correlate the event with a Temporal execution.
	// Both are empty for events emitted outside a workflow.
	WorkflowID string `json:"workflow_id,omitempty"`
	RunID      string `json:"run_id,omitempty"`

	// RequestID correlates the event with grading logs.
	RequestID string `json:"request_id,omitempty"`

	// Payload contains the event data as JSON. Its schema depends on Type.
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a fresh envelope. The idempotency key is
// derived from idemSeed so the same seed always yields the same key.
func NewEnvelope(eventType, source, idemSeed string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:             uuid.New().String(),
		Type:           eventType,
		Source:         source,
		Version:        CurrentVersion,
		Timestamp:      time.Now().UTC(),
		IdempotencyKey: uuid.NewSHA1(uuid.NameSpaceURL, []byte(eventType+"/"+idemSeed)).String(),
		Payload:        raw,
	}, nil
}

// EventSink receives events for downstream consumers.
//
// Append should return quickly. Callers treat a failed append as an
// observability gap, never as a failure of the operation that emitted it.
type EventSink interface {
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink discards every event.
type NoOpEventSink struct{}

// Append implements EventSink.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error { return nil }

// NewNoOpEventSink creates a sink that discards events.
func NewNoOpEventSink() EventSink { return &NoOpEventSink{} }
