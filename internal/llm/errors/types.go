package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType categorizes vendor-reported failures by HTTP status and vendor
// error code. It is finer grained than Kind and informs retry decisions made
// outside the grading core.
//
//nolint:godot // linter incorrectly flags properly capitalized comment
type ErrorType string

const (
	// ErrorTypeTimeout indicates request timeout or deadline exceeded (retryable).
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeRateLimit indicates the vendor throttled the request (retryable).
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeNetwork indicates network connectivity issues (retryable).
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeProvider indicates provider service unavailable (retryable).
	ErrorTypeProvider ErrorType = "provider_unavailable"

	// ErrorTypeValidation indicates the vendor rejected the request body.
	ErrorTypeValidation ErrorType = "validation_failed"

	// ErrorTypeAuth indicates the vendor rejected the credential (non-retryable).
	ErrorTypeAuth ErrorType = "authentication"

	// ErrorTypePermission indicates insufficient permissions (non-retryable).
	ErrorTypePermission ErrorType = "permission_denied"

	// ErrorTypeQuota indicates account quota exceeded (non-retryable).
	ErrorTypeQuota ErrorType = "quota_exceeded"

	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Grading-core failures. Adapters wrap these so callers can use errors.Is.
var (
	// ErrMissingCredential indicates no API key could be resolved from the
	// request, the configuration or the environment.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredentialFormat indicates the API key failed the superficial
	// shape check (prefix, length, embedded whitespace).
	ErrInvalidCredentialFormat = errors.New("invalid credential format")

	// ErrEmptyReply indicates the vendor answered successfully but the
	// extracted text was empty or whitespace only.
	ErrEmptyReply = errors.New("empty reply")

	// ErrInvalidModel indicates a model name that cannot be placed safely in
	// a vendor endpoint.
	ErrInvalidModel = errors.New("invalid model name")

	// ErrUnknownProvider indicates an adapter was requested for a provider
	// that has no implementation.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidResponse indicates the vendor returned a body that could not
	// be decoded in its documented shape.
	ErrInvalidResponse = errors.New("invalid provider response")
)

// CredentialError ties a credential failure to the provider it concerns.
// Err is ErrMissingCredential or ErrInvalidCredentialFormat.
type CredentialError struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason,omitempty"`
	Err      error  `json:"-"`
}

// Error returns the provider-scoped credential message.
func (e *CredentialError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %v: %s", e.Provider, e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *CredentialError) Unwrap() error { return e.Err }

// ProviderError captures structured error responses from LLM providers.
// Message is the vendor's own message, passed through verbatim.
type ProviderError struct {
	Provider   string    `json:"provider"`    // Provider name
	StatusCode int       `json:"status_code"` // HTTP status code
	Message    string    `json:"message"`     // Vendor error message
	Code       string    `json:"code"`        // Vendor error code
	Type       ErrorType `json:"type"`        // Classified error type
	RetryAfter int       `json:"retry_after"` // Retry-After header value in seconds
}

// Error returns formatted provider error with status code context.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsRetryable determines if the provider error warrants a retry attempt by
// a caller that chooses to retry. The grading core itself never retries.
//
//nolint:godot // linter incorrectly flags properly capitalized comment
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeNetwork, ErrorTypeProvider:
		return true
	default:
		return false
	}
}

// GetRetryAfter returns the vendor's Retry-After hint.
func (e *ProviderError) GetRetryAfter() time.Duration {
	if e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter) * time.Second
	}
	return 0
}

// ValidationError captures input validation failures with structured context.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Invalid value
	Message string `json:"message"` // Validation message
	Err     error  `json:"-"`       // Optional sentinel
}

// Error returns formatted validation error with field-specific context.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Unwrap exposes the optional sentinel for errors.Is.
func (e *ValidationError) Unwrap() error { return e.Err }
