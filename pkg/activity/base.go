// Package activity holds helpers shared by Temporal activity implementations:
// execution metadata, best-effort event emission, and logging and heartbeats
// that degrade to no-ops outside an activity context.
package activity

import (
	"context"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/ahrav/exam-grader/pkg/events"
)

// Emission retry policy for EmitEventSafe.
const (
	emitAttempts   = 2
	emitRetryDelay = 200 * time.Millisecond
)

// WorkflowContext is the Temporal execution an activity runs under.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	ActivityID string
	Attempt    int32
}

// IdempotencySeed identifies the activity invocation independently of the
// attempt number, so retries emit events with the same idempotency key.
func (w WorkflowContext) IdempotencySeed() string {
	return w.WorkflowID + "/" + w.RunID + "/" + w.ActivityID
}

// BaseActivities is embedded by activity structs.
type BaseActivities struct {
	eventSink events.EventSink
}

// NewBaseActivities creates a BaseActivities. A nil sink disables events.
func NewBaseActivities(sink events.EventSink) BaseActivities {
	return BaseActivities{eventSink: sink}
}

// GetWorkflowContext reads execution metadata from ctx. Outside an activity
// context (plain unit tests) it returns a zero WorkflowContext with
// ActivityID "local".
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) WorkflowContext {
	wfCtx := WorkflowContext{ActivityID: "local"}
	func() {
		defer func() { _ = recover() }()
		info := activity.GetInfo(ctx)
		wfCtx = WorkflowContext{
			WorkflowID: info.WorkflowExecution.ID,
			RunID:      info.WorkflowExecution.RunID,
			ActivityID: info.ActivityID,
			Attempt:    info.Attempt,
		}
	}()
	return wfCtx
}

// EmitEventSafe appends envelope to the sink, retrying once after a short
// delay. Failures are logged and never returned.
func (b *BaseActivities) EmitEventSafe(ctx context.Context, envelope events.Envelope) {
	if b.eventSink == nil {
		return
	}

	var lastErr error
	for attempt := 0; attempt < emitAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(emitRetryDelay):
			case <-ctx.Done():
				SafeLogError(ctx, "event emission cancelled", "event_type", envelope.Type)
				return
			}
		}
		if lastErr = b.eventSink.Append(ctx, envelope); lastErr == nil {
			SafeLog(ctx, "event emitted",
				"event_type", envelope.Type,
				"idempotency_key", envelope.IdempotencyKey)
			return
		}
	}

	SafeLogError(ctx, "event emission failed",
		"event_type", envelope.Type,
		"attempts", emitAttempts,
		"error", lastErr)
}

// RecordHeartbeat records a heartbeat when ctx is an activity context.
func (b *BaseActivities) RecordHeartbeat(ctx context.Context, details ...any) {
	RecordHeartbeat(ctx, details...)
}

// SafeLog logs at info level through the activity logger. It is a no-op
// outside an activity context.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogError is SafeLog at error level.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}

// RecordHeartbeat records a heartbeat. It is a no-op outside an activity
// context.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() { _ = recover() }()
	activity.RecordHeartbeat(ctx, details...)
}
