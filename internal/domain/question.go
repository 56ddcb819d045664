// Package domain defines the grading data model shared by the prompt builder,
// the provider adapters and the grading orchestrator.
//
// Records in this package are plain values. A Question is supplied by the
// question-bank collaborator and never mutated, a GradingRequest lives for one
// grading attempt, and a GradingResult is handed back to the caller, which owns
// any persistence.
package domain

import "strings"

// Question is one exam item as supplied by the question bank.
type Question struct {
	// ID uniquely identifies the question within its bank.
	ID string `json:"id" yaml:"id" validate:"required"`

	// Section is the human-readable section label, e.g. "Part II".
	Section string `json:"section" yaml:"section"`

	// MaxScore is the point value of the question.
	MaxScore float64 `json:"maxScore" yaml:"max_score" validate:"gte=0"`

	// Prompt is the question text shown to the student.
	Prompt string `json:"prompt" yaml:"prompt" validate:"required"`

	// Topics optionally lists topic labels covered by the question.
	Topics []string `json:"topics,omitempty" yaml:"topics"`

	// HeadingKey optionally names the heading used to look up supplementary
	// notes and booklist snippets.
	HeadingKey string `json:"headingKey,omitempty" yaml:"heading_key"`
}

// Validate checks the question against its struct constraints.
func (q *Question) Validate() error { return validate.Struct(q) }

// Points returns the authoritative point value. Negative values collapse to 0.
func (q *Question) Points() float64 {
	if q.MaxScore < 0 {
		return 0
	}
	return q.MaxScore
}

// HasTopics reports whether at least one non-blank topic label is present.
func (q *Question) HasTopics() bool {
	for _, t := range q.Topics {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
