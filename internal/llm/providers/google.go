package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahrav/exam-grader/internal/domain"
	"github.com/ahrav/exam-grader/internal/llm/configuration"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// GoogleAdapter implements Adapter for Google Gemini models.
// It handles Google's generateContent API format with API key authentication
// as a URL parameter, a separate system instruction and a single user turn.
type GoogleAdapter struct {
	config configuration.ProviderConfig
	client *http.Client
}

// NewGoogleAdapter creates a Google provider adapter with default endpoint.
// If no endpoint is configured, it defaults to Google's generative language API.
func NewGoogleAdapter(cfg configuration.ProviderConfig, client *http.Client) *GoogleAdapter {
	def := configuration.DefaultProviderConfig(domain.ProviderGoogle)
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = def.DefaultModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleAdapter{config: cfg, client: client}
}

// Name returns the provider name.
func (a *GoogleAdapter) Name() domain.Provider {
	return domain.ProviderGoogle
}

// Model returns requested, or the configured default when it is blank.
func (a *GoogleAdapter) Model(requested string) string {
	return resolveModel(requested, a.config.DefaultModel)
}

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googleRequest struct {
	SystemInstruction googleContent   `json:"systemInstruction"`
	Contents          []googleContent `json:"contents"`
	GenerationConfig  struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// Send posts the prompt to the model's generateContent endpoint.
func (a *GoogleAdapter) Send(ctx context.Context, call Call) (string, error) {
	key, err := resolveCredential(domain.ProviderGoogle, call.Credential, a.config.APIKey, a.config.APIKeyEnv)
	if err != nil {
		return "", err
	}
	model, err := sanitizePathModel(domain.ProviderGoogle, a.Model(call.Model))
	if err != nil {
		return "", err
	}

	body := googleRequest{
		SystemInstruction: googleContent{Parts: []googlePart{{Text: call.System}}},
		Contents: []googleContent{
			{Role: string(domain.RoleUser), Parts: []googlePart{{Text: call.User}}},
		},
	}
	body.GenerationConfig.ResponseMimeType = "application/json"

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?%s",
		strings.TrimRight(a.config.Endpoint, "/"),
		model,
		url.Values{"key": []string{key}}.Encode(),
	)

	raw, err := postJSON(ctx, a.client, endpoint, body, nil, a.config.Headers, parseGoogleError)
	if err != nil {
		return "", err
	}

	var resp googleResponse
	if err := decodeBody(raw, &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	content := b.String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w", domain.ProviderGoogle, llmerrors.ErrEmptyReply)
	}
	return content, nil
}

// parseGoogleError converts Google error responses to ProviderError.
// Extracts error details from Google's JSON error format.
func parseGoogleError(statusCode int, body []byte) *llmerrors.ProviderError {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return vendorError(string(domain.ProviderGoogle), statusCode, errResp.Error.Message, errResp.Error.Status, body)
	}
	return vendorError(string(domain.ProviderGoogle), statusCode, "", "", body)
}
