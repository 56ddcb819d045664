package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/exam-grader/internal/domain"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "missing_credential",
			err:  &CredentialError{Provider: "openai", Err: ErrMissingCredential},
			want: KindMissingCredential,
		},
		{
			name: "invalid_credential_format_wrapped",
			err:  fmt.Errorf("send: %w", &CredentialError{Provider: "google", Err: ErrInvalidCredentialFormat}),
			want: KindInvalidCredentialFormat,
		},
		{
			name: "provider_error",
			err:  &ProviderError{Provider: "anthropic", StatusCode: http.StatusBadRequest, Message: "bad"},
			want: KindProvider,
		},
		{name: "empty_reply", err: fmt.Errorf("openai: %w", ErrEmptyReply), want: KindEmptyReply},
		{name: "invalid_model", err: &ValidationError{Field: "model", Err: ErrInvalidModel}, want: KindInvalidModel},
		{name: "validation", err: &ValidationError{Field: "answer", Message: "empty"}, want: KindValidation},
		{name: "domain_validation", err: fmt.Errorf("%w: x", domain.ErrInvalidGradingRequest), want: KindValidation},
		{name: "canceled", err: fmt.Errorf("do: %w", context.Canceled), want: KindCanceled},
		{name: "invalid_response", err: fmt.Errorf("%w: eof", ErrInvalidResponse), want: KindTransport},
		{name: "unknown", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestClassifyLLMError(t *testing.T) {
	t.Run("nil_error", func(t *testing.T) {
		assert.Nil(t, ClassifyLLMError(nil))
	})

	t.Run("provider_error_classification", func(t *testing.T) {
		providerErr := &ProviderError{
			Provider:   "openai",
			StatusCode: http.StatusTooManyRequests,
			Message:    "Rate limit exceeded",
			Code:       "rate_limit_exceeded",
			Type:       ErrorTypeRateLimit,
			RetryAfter: 60,
		}

		result := ClassifyLLMError(providerErr)
		require.NotNil(t, result)
		assert.Equal(t, KindProvider, result.Kind)
		assert.Equal(t, ErrorTypeRateLimit, result.Type)
		assert.Equal(t, "Rate limit exceeded", result.Message)
		assert.Equal(t, "rate_limit_exceeded", result.Code)
		assert.True(t, result.ShouldRetry())
		assert.Equal(t, "openai", result.Details["provider"])
		assert.Equal(t, http.StatusTooManyRequests, result.Details["status_code"])
		assert.Equal(t, providerErr, result.Cause)
	})

	t.Run("credential_errors_are_not_retryable", func(t *testing.T) {
		for _, sentinel := range []error{ErrMissingCredential, ErrInvalidCredentialFormat} {
			result := ClassifyLLMError(&CredentialError{Provider: "google", Err: sentinel})
			require.NotNil(t, result)
			assert.False(t, result.Retryable)
			assert.Equal(t, ErrorTypeAuth, result.Type)
			assert.Equal(t, "google", result.Details["provider"])
		}
	})

	t.Run("empty_reply_is_retryable", func(t *testing.T) {
		result := ClassifyLLMError(fmt.Errorf("anthropic: %w", ErrEmptyReply))
		assert.Equal(t, KindEmptyReply, result.Kind)
		assert.True(t, result.Retryable)
	})

	t.Run("validation_is_not_retryable", func(t *testing.T) {
		result := ClassifyLLMError(&ValidationError{Field: "answer", Message: "empty"})
		assert.Equal(t, ErrorTypeValidation, result.Type)
		assert.False(t, result.Retryable)
	})

	t.Run("untyped_connection_error", func(t *testing.T) {
		result := ClassifyLLMError(errors.New("connection refused"))
		assert.Equal(t, KindUnknown, result.Kind)
		assert.Equal(t, ErrorTypeNetwork, result.Type)
		assert.True(t, result.Retryable)
	})

	t.Run("error_string_and_unwrap", func(t *testing.T) {
		cause := &ProviderError{Provider: "openai", StatusCode: 500, Message: "down", Code: "server_error", Type: ErrorTypeProvider}
		result := ClassifyLLMError(cause)
		assert.Equal(t, "[provider_error:server_error] down", result.Error())
		assert.ErrorIs(t, result, cause)
	})
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "openai", StatusCode: 401, Message: "Incorrect API key provided", Type: ErrorTypeAuth, RetryAfter: 3}
	assert.Equal(t, "openai error (status 401): Incorrect API key provided", err.Error())
	assert.False(t, err.IsRetryable())
	assert.Equal(t, "3s", err.GetRetryAfter().String())

	err.Type = ErrorTypeProvider
	assert.True(t, err.IsRetryable())
}

func TestCredentialError(t *testing.T) {
	err := &CredentialError{Provider: "anthropic", Reason: "expected prefix sk-ant-", Err: ErrInvalidCredentialFormat}
	assert.Equal(t, "anthropic: invalid credential format: expected prefix sk-ant-", err.Error())
	assert.ErrorIs(t, err, ErrInvalidCredentialFormat)
	assert.NotErrorIs(t, err, ErrMissingCredential)
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage(&CredentialError{Provider: "openai", Err: ErrMissingCredential}), "No API key")
	assert.Contains(t, UserMessage(&ProviderError{Provider: "openai", Message: "quota exhausted"}), "quota exhausted")
	assert.Contains(t, UserMessage(errors.New("odd")), "odd")
}
