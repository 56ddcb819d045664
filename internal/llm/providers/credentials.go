package providers

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/ahrav/exam-grader/internal/domain"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// keyShape is the superficial format an API key must have before it is sent.
// It says nothing about whether the vendor will accept the key.
type keyShape struct {
	prefix string
	minLen int
}

var keyShapes = map[domain.Provider]keyShape{
	domain.ProviderOpenAI:    {prefix: "sk-", minLen: 20},
	domain.ProviderGoogle:    {prefix: "AIza", minLen: 30},
	domain.ProviderAnthropic: {prefix: "sk-ant-", minLen: 20},
}

// resolveCredential picks the first non-blank key from the request, the
// configured key and the configured environment variable, then checks its
// shape. No network I/O happens here.
func resolveCredential(p domain.Provider, requested, configured, envName string) (string, error) {
	key := strings.TrimSpace(requested)
	if key == "" {
		key = strings.TrimSpace(configured)
	}
	if key == "" && envName != "" {
		key = strings.TrimSpace(os.Getenv(envName))
	}
	if key == "" {
		return "", &llmerrors.CredentialError{
			Provider: string(p),
			Reason:   missingReason(envName),
			Err:      llmerrors.ErrMissingCredential,
		}
	}
	if err := checkKeyShape(p, key); err != nil {
		return "", err
	}
	return key, nil
}

func missingReason(envName string) string {
	if envName == "" {
		return "no key supplied"
	}
	return fmt.Sprintf("no key supplied and %s is unset", envName)
}

func checkKeyShape(p domain.Provider, key string) error {
	invalid := func(reason string) error {
		return &llmerrors.CredentialError{
			Provider: string(p),
			Reason:   reason,
			Err:      llmerrors.ErrInvalidCredentialFormat,
		}
	}

	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return invalid("key contains whitespace or line breaks")
	}
	shape, ok := keyShapes[p]
	if !ok {
		return nil
	}
	if !strings.HasPrefix(key, shape.prefix) {
		return invalid(fmt.Sprintf("expected prefix %q", shape.prefix))
	}
	if len(key) < shape.minLen {
		return invalid(fmt.Sprintf("expected at least %d characters", shape.minLen))
	}
	return nil
}

// modelNamePattern admits names that are safe as a single URL path segment.
var modelNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// sanitizePathModel validates a model name that is placed in a URL path.
// The "models/" resource prefix is rejected rather than stripped so callers
// learn to pass bare model identifiers.
func sanitizePathModel(p domain.Provider, model string) (string, error) {
	model = strings.TrimSpace(model)
	invalid := func(msg string) error {
		return &llmerrors.ValidationError{
			Field:   "model",
			Value:   model,
			Message: fmt.Sprintf("%s: %s", p, msg),
			Err:     llmerrors.ErrInvalidModel,
		}
	}
	if strings.HasPrefix(strings.ToLower(model), "models/") {
		return "", invalid(`model must not include the "models/" prefix`)
	}
	if !modelNamePattern.MatchString(model) {
		return "", invalid("model contains characters that are not allowed in an endpoint path")
	}
	return model, nil
}

// resolveModel applies the request-wins-then-default rule.
func resolveModel(requested, fallback string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	return fallback
}
