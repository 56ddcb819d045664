package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahrav/exam-grader/internal/domain"
	"github.com/ahrav/exam-grader/internal/llm/configuration"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// Call is one provider-agnostic prompt dispatch.
type Call struct {
	System     string
	User       string
	Model      string // empty selects the adapter's default model
	Credential string // empty falls back to the configured key
}

// Adapter abstracts vendor-specific HTTP communication. Each provider
// (OpenAI, Google, Anthropic) implements it to translate a Call into its own
// request shape and pull the raw reply text out of its own response shape.
//
// Implementations hold no mutable state and are safe for concurrent use.
type Adapter interface {
	// Send performs exactly one upstream round trip and returns the raw reply
	// text. It fails with a *CredentialError before any network I/O when no
	// usable key is available, with a *ProviderError for non-2xx responses,
	// and with ErrEmptyReply when the reply carries no visible text.
	Send(ctx context.Context, call Call) (string, error)

	// Model resolves the model a Call would use: the requested value when
	// set, otherwise the injected default.
	Model(requested string) string

	// Name returns the canonical provider identifier.
	Name() domain.Provider
}

// Router selects the adapter for a provider selector.
type Router interface {
	// Pick returns the adapter for provider. Unknown or empty selectors
	// resolve to the default provider's adapter.
	Pick(provider string) Adapter
}

// NewRouter creates a router with one adapter per supported provider, built
// from cfg. Every adapter shares cfg's HTTP client.
func NewRouter(cfg *configuration.Config) (Router, error) {
	if cfg == nil {
		cfg = configuration.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.Client()
	adapters := make(map[domain.Provider]Adapter, len(domain.Providers()))
	for _, p := range domain.Providers() {
		pc := cfg.Provider(p)
		switch p {
		case domain.ProviderOpenAI:
			adapters[p] = NewOpenAIAdapter(pc, client)
		case domain.ProviderGoogle:
			adapters[p] = NewGoogleAdapter(pc, client)
		case domain.ProviderAnthropic:
			adapters[p] = NewAnthropicAdapter(pc, client)
		default:
			return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, p)
		}
	}

	return NewRouterFromAdapters(adapters)
}

// NewRouterFromAdapters builds a router over explicit adapters. The default
// provider must be present.
func NewRouterFromAdapters(adapters map[domain.Provider]Adapter) (Router, error) {
	if _, ok := adapters[domain.DefaultProvider]; !ok {
		return nil, fmt.Errorf("%w: default provider %s not configured", llmerrors.ErrUnknownProvider, domain.DefaultProvider)
	}
	cp := make(map[domain.Provider]Adapter, len(adapters))
	for k, v := range adapters {
		cp[k] = v
	}
	return &router{adapters: cp}, nil
}

// Instrumented wraps every adapter of r with Instrument.
func Instrumented(r Router, logger *slog.Logger, metrics Metrics) Router {
	inner, ok := r.(*router)
	if !ok {
		return r
	}
	wrapped := make(map[domain.Provider]Adapter, len(inner.adapters))
	for k, v := range inner.adapters {
		wrapped[k] = Instrument(v, logger, metrics)
	}
	return &router{adapters: wrapped}
}

// router implements Router with a provider -> adapter registry.
type router struct {
	adapters map[domain.Provider]Adapter
}

// Pick resolves the selector with domain.ParseProvider and falls back to the
// default adapter if the resolved provider has none registered.
func (r *router) Pick(provider string) Adapter {
	if a, ok := r.adapters[domain.ParseProvider(provider)]; ok {
		return a
	}
	return r.adapters[domain.DefaultProvider]
}
