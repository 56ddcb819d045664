package activity

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// nonRetryable wraps an error as a Temporal non-retryable application error.
// The tag becomes the application error type.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// toApplicationError converts a grading failure into a Temporal application
// error typed by its failure kind. Transport failures, empty replies and
// retryable vendor errors stay retryable; credential, validation and model
// errors do not. A vendor Retry-After hint overrides the next retry delay.
func toApplicationError(err error) error {
	wfErr := llmerrors.ClassifyLLMError(err)
	if wfErr == nil {
		return nil
	}
	tag := string(wfErr.Kind)
	if !wfErr.ShouldRetry() {
		return nonRetryable(tag, err, wfErr.Error())
	}

	opts := temporal.ApplicationErrorOptions{Cause: err}
	var provErr *llmerrors.ProviderError
	if errors.As(err, &provErr) {
		opts.NextRetryDelay = provErr.GetRetryAfter()
	}
	return temporal.NewApplicationErrorWithOptions(wfErr.Error(), tag, opts)
}
