package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ahrav/exam-grader/internal/domain"
	"github.com/ahrav/exam-grader/internal/llm/configuration"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// Anthropic API headers.
const (
	anthropicVersion = "2023-06-01"

	// anthropicDirectAccessHeader allows calls that do not pass through a
	// server-side proxy, e.g. from a browser build of the grader.
	anthropicDirectAccessHeader = "anthropic-dangerous-direct-browser-access"
)

// AnthropicAdapter implements Adapter for Anthropic Claude models.
// It handles Anthropic's messages API format with a separate system prompt,
// an explicit output-token ceiling and Anthropic-specific headers.
type AnthropicAdapter struct {
	config configuration.ProviderConfig
	client *http.Client
}

// NewAnthropicAdapter creates an Anthropic provider adapter with default endpoint.
// If no endpoint is configured, it defaults to Anthropic's production API.
func NewAnthropicAdapter(cfg configuration.ProviderConfig, client *http.Client) *AnthropicAdapter {
	def := configuration.DefaultProviderConfig(domain.ProviderAnthropic)
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = def.DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AnthropicAdapter{config: cfg, client: client}
}

// Name returns the provider name.
func (a *AnthropicAdapter) Name() domain.Provider {
	return domain.ProviderAnthropic
}

// Model returns requested, or the configured default when it is blank.
func (a *AnthropicAdapter) Model(requested string) string {
	return resolveModel(requested, a.config.DefaultModel)
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Send posts the prompt to the messages endpoint.
func (a *AnthropicAdapter) Send(ctx context.Context, call Call) (string, error) {
	key, err := resolveCredential(domain.ProviderAnthropic, call.Credential, a.config.APIKey, a.config.APIKeyEnv)
	if err != nil {
		return "", err
	}

	body := anthropicRequest{
		Model:     a.Model(call.Model),
		MaxTokens: a.config.MaxTokens,
		System:    call.System,
		Messages: []anthropicMessage{
			{Role: string(domain.RoleUser), Content: call.User},
		},
	}

	endpoint := strings.TrimRight(a.config.Endpoint, "/") + "/messages"
	headers := map[string]string{
		"x-api-key":                 key,
		"anthropic-version":         anthropicVersion,
		anthropicDirectAccessHeader: "true",
	}

	raw, err := postJSON(ctx, a.client, endpoint, body, headers, a.config.Headers, parseAnthropicError)
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := decodeBody(raw, &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	content := b.String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w", domain.ProviderAnthropic, llmerrors.ErrEmptyReply)
	}
	return content, nil
}

// parseAnthropicError converts Anthropic error responses to ProviderError.
// Anthropic nests details under "error"; older gateways return them flat.
func parseAnthropicError(statusCode int, body []byte) *llmerrors.ProviderError {
	var errResp struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Error   struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error.Message != "" {
			return vendorError(string(domain.ProviderAnthropic), statusCode, errResp.Error.Message, errResp.Error.Type, body)
		}
		if errResp.Message != "" {
			return vendorError(string(domain.ProviderAnthropic), statusCode, errResp.Message, errResp.Type, body)
		}
	}
	return vendorError(string(domain.ProviderAnthropic), statusCode, "", "", body)
}
