package configuration

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ahrav/exam-grader/internal/domain"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid llm configuration")

// Config holds the configuration injected into the provider adapters and the
// grading service. Nothing in the grading core reads process state directly;
// defaults such as per-provider model names arrive through this struct.
type Config struct {
	// HTTP client configuration
	HTTPTimeout time.Duration `json:"http_timeout" koanf:"http_timeout"`
	HTTPClient  *http.Client  `json:"-" koanf:"-"`

	// Provider configurations keyed by provider name ("openai", "google",
	// "anthropic").
	Providers map[string]ProviderConfig `json:"providers" koanf:"providers"`

	// Prompt rendering
	Prompt PromptConfig `json:"prompt" koanf:"prompt"`

	// Observability configuration
	Observability ObservabilityConfig `json:"observability" koanf:"observability"`
}

// ProviderConfig holds provider-specific configuration and authentication.
type ProviderConfig struct {
	Endpoint     string            `json:"endpoint" koanf:"endpoint"`
	APIKey       string            `json:"-" koanf:"api_key"` // Sensitive, not serialized
	APIKeyEnv    string            `json:"api_key_env" koanf:"api_key_env"`
	DefaultModel string            `json:"default_model" koanf:"default_model"`
	MaxTokens    int               `json:"max_tokens" koanf:"max_tokens"`
	Headers      map[string]string `json:"headers" koanf:"headers"`
}

// PromptConfig controls prompt rendering.
type PromptConfig struct {
	Language string `json:"language" koanf:"language"`
}

// ObservabilityConfig controls structured logging and metrics.
type ObservabilityConfig struct {
	MetricsEnabled bool   `json:"metrics_enabled" koanf:"metrics_enabled"`
	LogLevel       string `json:"log_level" koanf:"log_level"`
	LogFormat      string `json:"log_format" koanf:"log_format"`
}

// Provider returns the configuration for p merged over its defaults, so a
// partially specified entry still has an endpoint and a default model.
func (c *Config) Provider(p domain.Provider) ProviderConfig {
	def := DefaultProviderConfig(p)
	got, ok := c.Providers[string(p)]
	if !ok {
		return def
	}
	if got.Endpoint == "" {
		got.Endpoint = def.Endpoint
	}
	if got.APIKeyEnv == "" {
		got.APIKeyEnv = def.APIKeyEnv
	}
	if got.DefaultModel == "" {
		got.DefaultModel = def.DefaultModel
	}
	if got.MaxTokens <= 0 {
		got.MaxTokens = def.MaxTokens
	}
	return got
}

// Client returns the configured HTTP client, or a new one bounded by
// HTTPTimeout.
func (c *Config) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        DefaultMaxIdleConns,
			IdleConnTimeout:     DefaultIdleTimeoutSeconds * time.Second,
			TLSHandshakeTimeout: DefaultTLSTimeoutSeconds * time.Second,
		},
	}
}

// Validate checks that every configured provider is known and sane.
func (c *Config) Validate() error {
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http_timeout must not be negative", ErrInvalidConfig)
	}
	for name, pc := range c.Providers {
		if !isKnownProvider(name) {
			return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, name)
		}
		if pc.MaxTokens < 0 {
			return fmt.Errorf("%w: providers.%s.max_tokens must not be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}

func isKnownProvider(name string) bool {
	for _, p := range domain.Providers() {
		if string(p) == name {
			return true
		}
	}
	return false
}
