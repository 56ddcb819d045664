package domain

import "strings"

// Provider selects the LLM vendor used for a grading attempt.
type Provider string

// Supported providers. These values must match the provider keys used in
// configuration.
const (
	ProviderOpenAI    Provider = "openai"    // chat-completions style
	ProviderGoogle    Provider = "google"    // generateContent style
	ProviderAnthropic Provider = "anthropic" // messages style
)

// DefaultProvider is used when a request names no provider or an unknown one.
const DefaultProvider = ProviderOpenAI

// Providers returns every supported provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderGoogle, ProviderAnthropic}
}

// ParseProvider maps a free-form selector to a Provider. Matching is
// case-insensitive and "gemini"/"claude" are accepted as vendor aliases.
// Anything unrecognized, including the empty string, maps to DefaultProvider.
func ParseProvider(s string) Provider {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return ProviderOpenAI
	case "google", "gemini":
		return ProviderGoogle
	case "anthropic", "claude":
		return ProviderAnthropic
	default:
		return DefaultProvider
	}
}

// String implements fmt.Stringer.
func (p Provider) String() string { return string(p) }
