package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Request validation errors.
var (
	// ErrInvalidGradingRequest wraps every GradingRequest validation failure.
	ErrInvalidGradingRequest = errors.New("invalid grading request")

	// ErrEmptyAnswer indicates the answer text is empty or whitespace only.
	ErrEmptyAnswer = errors.New("answer must not be empty")
)

// GradingRequest carries everything needed for a single grading attempt.
// It is constructed once per attempt and not retained afterwards.
type GradingRequest struct {
	// Question is the item being answered.
	Question Question `json:"question" validate:"required"`

	// Answer is the student's free-text answer.
	Answer string `json:"answer" validate:"required"`

	// Provider selects the vendor. Unknown values route to DefaultProvider.
	Provider string `json:"provider,omitempty"`

	// Model optionally overrides the provider's default model.
	Model string `json:"model,omitempty"`

	// Credential is the opaque API key for the provider. When empty the
	// adapter falls back to its configured key.
	Credential string `json:"-"`

	// ElapsedSeconds is an advisory hint of how long the student spent.
	ElapsedSeconds float64 `json:"elapsedSeconds,omitempty" validate:"gte=0"`

	// Notes is an optional calibration snippet. The model must not quote it.
	Notes string `json:"notes,omitempty"`

	// Booklist is an optional citable reference snippet.
	Booklist string `json:"booklist,omitempty"`
}

// Validate checks struct constraints and that the answer has visible content.
func (r *GradingRequest) Validate() error {
	if strings.TrimSpace(r.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGradingRequest, ErrEmptyAnswer)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGradingRequest, err)
	}
	return nil
}

// ResolvedProvider returns the provider this request routes to.
func (r *GradingRequest) ResolvedProvider() Provider { return ParseProvider(r.Provider) }
