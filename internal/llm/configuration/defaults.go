package configuration

import (
	"time"

	"github.com/ahrav/exam-grader/internal/domain"
)

// HTTP and connection constants.
const (
	DefaultMaxIdleConns       = 100
	DefaultIdleTimeoutSeconds = 90
	DefaultTLSTimeoutSeconds  = 10
	DefaultHTTPTimeout        = 60 * time.Second
)

// Vendor endpoints.
const (
	DefaultOpenAIEndpoint    = "https://api.openai.com/v1"
	DefaultGoogleEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultAnthropicEndpoint = "https://api.anthropic.com/v1"
)

// Default models used when a request names none.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGoogleModel    = "gemini-1.5-flash"
	DefaultAnthropicModel = "claude-3-5-sonnet-latest"
)

// Environment variables consulted for API keys when neither the request nor
// the configuration carries one.
const (
	DefaultOpenAIKeyEnv    = "OPENAI_API_KEY"
	DefaultGoogleKeyEnv    = "GEMINI_API_KEY"
	DefaultAnthropicKeyEnv = "ANTHROPIC_API_KEY"
)

// DefaultMaxTokens is the output-token ceiling sent to vendors that require
// one (Anthropic).
const DefaultMaxTokens = 2048

// DefaultProviderConfig returns the built-in configuration for p.
func DefaultProviderConfig(p domain.Provider) ProviderConfig {
	switch p {
	case domain.ProviderGoogle:
		return ProviderConfig{
			Endpoint:     DefaultGoogleEndpoint,
			APIKeyEnv:    DefaultGoogleKeyEnv,
			DefaultModel: DefaultGoogleModel,
			MaxTokens:    DefaultMaxTokens,
		}
	case domain.ProviderAnthropic:
		return ProviderConfig{
			Endpoint:     DefaultAnthropicEndpoint,
			APIKeyEnv:    DefaultAnthropicKeyEnv,
			DefaultModel: DefaultAnthropicModel,
			MaxTokens:    DefaultMaxTokens,
		}
	default:
		return ProviderConfig{
			Endpoint:     DefaultOpenAIEndpoint,
			APIKeyEnv:    DefaultOpenAIKeyEnv,
			DefaultModel: DefaultOpenAIModel,
			MaxTokens:    DefaultMaxTokens,
		}
	}
}

// DefaultConfig returns a configuration with every provider populated.
func DefaultConfig() *Config {
	providers := make(map[string]ProviderConfig, len(domain.Providers()))
	for _, p := range domain.Providers() {
		providers[string(p)] = DefaultProviderConfig(p)
	}
	return &Config{
		HTTPTimeout: DefaultHTTPTimeout,
		Providers:   providers,
		Prompt: PromptConfig{
			Language: "English",
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: true,
			LogLevel:       "info",
			LogFormat:      "json",
		},
	}
}
