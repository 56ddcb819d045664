package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/exam-grader/internal/domain"
	"github.com/ahrav/exam-grader/internal/llm/configuration"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

func TestGoogleAdapter_Send(t *testing.T) {
	t.Run("request_shape_and_reply", func(t *testing.T) {
		fv := newFakeVendor(t, http.StatusOK,
			`{"candidates":[{"content":{"parts":[{"text":"{\"score\":"},{"text":"4}"}]},"finishReason":"STOP"}]}`, nil)
		adapter := NewGoogleAdapter(configuration.ProviderConfig{Endpoint: fv.URL + "/v1beta"}, fv.Client())

		text, err := adapter.Send(context.Background(), Call{
			System:     "system text",
			User:       "user text",
			Credential: testGoogleKey,
		})
		require.NoError(t, err)
		assert.Equal(t, `{"score":4}`, text)

		req := fv.Last()
		assert.Equal(t, "/v1beta/models/"+configuration.DefaultGoogleModel+":generateContent", req.Path)
		assert.Equal(t, []string{testGoogleKey}, req.Query["key"])
		assert.Empty(t, req.Header.Get("Authorization"))

		assert.Equal(t,
			map[string]any{"parts": []any{map[string]any{"text": "system text"}}},
			req.Body["systemInstruction"])
		contents, ok := req.Body["contents"].([]any)
		require.True(t, ok)
		require.Len(t, contents, 1)
		assert.Equal(t,
			map[string]any{"role": "user", "parts": []any{map[string]any{"text": "user text"}}},
			contents[0])
		assert.Equal(t,
			map[string]any{"responseMimeType": "application/json"},
			req.Body["generationConfig"])
	})

	t.Run("all_candidates_concatenated", func(t *testing.T) {
		fv := newFakeVendor(t, http.StatusOK,
			`{"candidates":[{"content":{"parts":[{"text":"first"}]}},{"content":{"parts":[{"text":"second"}]}}]}`, nil)
		adapter := NewGoogleAdapter(configuration.ProviderConfig{Endpoint: fv.URL}, fv.Client())

		text, err := adapter.Send(context.Background(), Call{Credential: testGoogleKey})
		require.NoError(t, err)
		assert.Equal(t, "firstsecond", text)
	})

	t.Run("no_candidates_is_empty_reply", func(t *testing.T) {
		fv := newFakeVendor(t, http.StatusOK, `{"candidates":[]}`, nil)
		adapter := NewGoogleAdapter(configuration.ProviderConfig{Endpoint: fv.URL}, fv.Client())

		_, err := adapter.Send(context.Background(), Call{Credential: testGoogleKey})
		require.ErrorIs(t, err, llmerrors.ErrEmptyReply)
	})

	t.Run("vendor_error_passed_through", func(t *testing.T) {
		fv := newFakeVendor(t, http.StatusBadRequest,
			`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, nil)
		adapter := NewGoogleAdapter(configuration.ProviderConfig{Endpoint: fv.URL}, fv.Client())

		_, err := adapter.Send(context.Background(), Call{Credential: testGoogleKey})
		var provErr *llmerrors.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "google", provErr.Provider)
		assert.Equal(t, "API key not valid. Please pass a valid API key.", provErr.Message)
		assert.Equal(t, "INVALID_ARGUMENT", provErr.Code)
	})

	t.Run("transport_error_hides_key", func(t *testing.T) {
		fv := newFakeVendor(t, http.StatusOK, `{}`, nil)
		endpoint := fv.URL
		fv.Close()

		adapter := NewGoogleAdapter(configuration.ProviderConfig{Endpoint: endpoint}, http.DefaultClient)
		_, err := adapter.Send(context.Background(), Call{Credential: testGoogleKey})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), testGoogleKey)

		var urlErr *url.Error
		require.True(t, errors.As(err, &urlErr))
		assert.Equal(t, llmerrors.KindTransport, llmerrors.KindOf(err))
	})
}

func TestGoogleAdapter_ModelSanitation(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		wantErr bool
	}{
		{name: "bare_model", model: "gemini-1.5-pro", wantErr: false},
		{name: "dotted_underscored", model: "gemini_2.0.flash-exp", wantErr: false},
		{name: "resource_prefix", model: "models/gemini-1.5-pro", wantErr: true},
		{name: "path_traversal", model: "../../secrets", wantErr: true},
		{name: "query_injection", model: "gemini?alt=sse", wantErr: true},
		{name: "embedded_slash", model: "gemini/pro", wantErr: true},
		{name: "leading_dash", model: "-gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := newFakeVendor(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`, nil)
			adapter := NewGoogleAdapter(configuration.ProviderConfig{Endpoint: fv.URL}, fv.Client())

			_, err := adapter.Send(context.Background(), Call{Model: tt.model, Credential: testGoogleKey})
			if tt.wantErr {
				require.ErrorIs(t, err, llmerrors.ErrInvalidModel)
				assert.Equal(t, llmerrors.KindInvalidModel, llmerrors.KindOf(err))
				assert.Equal(t, 0, fv.Calls())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/models/"+tt.model+":generateContent", fv.Last().Path)
		})
	}
}

func TestGoogleAdapter_CredentialShape(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{}`, nil)
	adapter := NewGoogleAdapter(configuration.ProviderConfig{Endpoint: fv.URL}, fv.Client())

	_, err := adapter.Send(context.Background(), Call{Credential: testOpenAIKey})
	require.ErrorIs(t, err, llmerrors.ErrInvalidCredentialFormat)

	_, err = adapter.Send(context.Background(), Call{Credential: "AIzaShort"})
	require.ErrorIs(t, err, llmerrors.ErrInvalidCredentialFormat)

	assert.Equal(t, 0, fv.Calls())
	assert.Equal(t, domain.ProviderGoogle, adapter.Name())
}
