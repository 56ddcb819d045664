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

// OpenAIAdapter implements Adapter for OpenAI chat-completion models.
// It sends both prompt messages in one list, asks for JSON-object response
// mode, and reads the text of the first choice.
type OpenAIAdapter struct {
	config configuration.ProviderConfig
	client *http.Client
}

// NewOpenAIAdapter creates an OpenAI provider adapter with default endpoint.
// If no endpoint is configured, it defaults to OpenAI's production API.
func NewOpenAIAdapter(cfg configuration.ProviderConfig, client *http.Client) *OpenAIAdapter {
	def := configuration.DefaultProviderConfig(domain.ProviderOpenAI)
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = def.DefaultModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIAdapter{config: cfg, client: client}
}

// Name returns the provider name.
func (a *OpenAIAdapter) Name() domain.Provider {
	return domain.ProviderOpenAI
}

// Model returns requested, or the configured default when it is blank.
func (a *OpenAIAdapter) Model(requested string) string {
	return resolveModel(requested, a.config.DefaultModel)
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Send posts the prompt to the chat/completions endpoint.
func (a *OpenAIAdapter) Send(ctx context.Context, call Call) (string, error) {
	key, err := resolveCredential(domain.ProviderOpenAI, call.Credential, a.config.APIKey, a.config.APIKeyEnv)
	if err != nil {
		return "", err
	}

	body := openAIRequest{
		Model: a.Model(call.Model),
		Messages: []openAIMessage{
			{Role: string(domain.RoleSystem), Content: call.System},
			{Role: string(domain.RoleUser), Content: call.User},
		},
	}
	body.ResponseFormat.Type = "json_object"

	endpoint := strings.TrimRight(a.config.Endpoint, "/") + "/chat/completions"
	headers := map[string]string{
		"Authorization": "Bearer " + key,
	}

	raw, err := postJSON(ctx, a.client, endpoint, body, headers, a.config.Headers, parseOpenAIError)
	if err != nil {
		return "", err
	}

	var resp openAIResponse
	if err := decodeBody(raw, &resp); err != nil {
		return "", err
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w", domain.ProviderOpenAI, llmerrors.ErrEmptyReply)
	}
	return content, nil
}

// parseOpenAIError converts OpenAI error responses to ProviderError.
// Extracts error details from OpenAI's JSON error format.
func parseOpenAIError(statusCode int, body []byte) *llmerrors.ProviderError {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		code := errResp.Error.Type
		if s, ok := errResp.Error.Code.(string); ok && s != "" {
			code = s
		}
		return vendorError(string(domain.ProviderOpenAI), statusCode, errResp.Error.Message, code, body)
	}
	return vendorError(string(domain.ProviderOpenAI), statusCode, "", "", body)
}
