package errors

import (
	"fmt"
)

// WorkflowError provides error context for callers that schedule grading as
// a retried unit of work (the Temporal activity).
type WorkflowError struct {
	Kind      Kind           `json:"kind"`      // Caller-facing failure kind
	Type      ErrorType      `json:"type"`      // Vendor-level classification
	Message   string         `json:"message"`   // Human-readable message
	Code      string         `json:"code"`      // Provider-specific error code
	Retryable bool           `json:"retryable"` // Whether to retry
	Details   map[string]any `json:"details"`   // Additional context
	Cause     error          `json:"-"`         // Underlying error
}

// Error returns formatted error string with kind and code context.
func (e *WorkflowError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// ShouldRetry returns the explicit retry recommendation.
func (e *WorkflowError) ShouldRetry() bool {
	return e.Retryable
}
