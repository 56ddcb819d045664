package errors

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ahrav/exam-grader/internal/domain"
)

// Kind is the stable, caller-facing classification of a grading failure.
// The HTTP layer, logs, metrics and the Temporal activity all key on it.
type Kind string

// Failure kinds.
const (
	KindMissingCredential       Kind = "missing_credential"
	KindInvalidCredentialFormat Kind = "invalid_credential_format"
	KindProvider                Kind = "provider_error"
	KindEmptyReply              Kind = "empty_reply"
	KindInvalidModel            Kind = "invalid_model"
	KindValidation              Kind = "validation"
	KindTransport               Kind = "transport"
	KindCanceled                Kind = "canceled"
	KindUnknown                 Kind = "unknown"
)

// KindOf classifies err. A nil error has the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrInvalidCredentialFormat):
		return KindInvalidCredentialFormat
	case errors.Is(err, ErrEmptyReply):
		return KindEmptyReply
	case errors.Is(err, ErrInvalidModel):
		return KindInvalidModel
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return KindProvider
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) || errors.Is(err, domain.ErrInvalidGradingRequest) {
		return KindValidation
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, ErrInvalidResponse) {
		return KindTransport
	}

	return KindUnknown
}

// ClassifyLLMError transforms a grading failure into a WorkflowError with
// retry guidance for callers that run grading under a retry policy.
func ClassifyLLMError(err error) *WorkflowError {
	if err == nil {
		return nil
	}

	kind := KindOf(err)
	wfErr := &WorkflowError{
		Kind:    kind,
		Type:    ErrorTypeUnknown,
		Message: err.Error(),
		Cause:   err,
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		wfErr.Type = provErr.Type
		wfErr.Message = provErr.Message
		wfErr.Code = provErr.Code
		wfErr.Retryable = provErr.IsRetryable()
		wfErr.Details = map[string]any{
			"provider":    provErr.Provider,
			"status_code": provErr.StatusCode,
		}
		return wfErr
	}

	var credErr *CredentialError
	if errors.As(err, &credErr) {
		wfErr.Type = ErrorTypeAuth
		wfErr.Details = map[string]any{"provider": credErr.Provider}
		return wfErr
	}

	switch kind {
	case KindEmptyReply:
		// Models occasionally return nothing; a second attempt usually works.
		wfErr.Type = ErrorTypeProvider
		wfErr.Retryable = true
	case KindTransport:
		wfErr.Type = ErrorTypeNetwork
		wfErr.Retryable = true
	case KindCanceled:
		wfErr.Type = ErrorTypeTimeout
	case KindValidation, KindInvalidModel:
		wfErr.Type = ErrorTypeValidation
	default:
		wfErr.Type = classifyMessage(err.Error())
		wfErr.Retryable = wfErr.Type == ErrorTypeNetwork || wfErr.Type == ErrorTypeTimeout
	}
	return wfErr
}

// classifyMessage is the last resort for untyped errors.
func classifyMessage(msg string) ErrorType {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "rate limit"):
		return ErrorTypeRateLimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return ErrorTypeTimeout
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication"):
		return ErrorTypeAuth
	case strings.Contains(msg, "forbidden") || strings.Contains(msg, "permission"):
		return ErrorTypePermission
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection"):
		return ErrorTypeNetwork
	default:
		return ErrorTypeUnknown
	}
}

// UserMessage renders a short diagnostic suitable for showing to a student.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindMissingCredential:
		return "No API key is configured for the selected provider. Please enter a key."
	case KindInvalidCredentialFormat:
		return "The API key does not look valid for the selected provider. Please check it and try again."
	case KindEmptyReply:
		return "The model returned an empty reply. Please try again."
	case KindInvalidModel:
		return "The model name is not valid for the selected provider."
	case KindValidation:
		return "The grading request is incomplete: " + err.Error()
	case KindCanceled:
		return "Grading was cancelled or timed out."
	case KindProvider:
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			return "The provider rejected the request: " + provErr.Message
		}
	}
	return "Grading failed: " + err.Error()
}
