// Package prompt renders the provider-agnostic grading prompt.
//
// A Builder turns a question, the student's answer and optional context into
// exactly two chat messages: a fixed system instruction block and a user
// message carrying the material to grade. Rendering is pure: no I/O, no
// randomness, and the same input always yields the same messages.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/ahrav/exam-grader/internal/domain"
)

// DefaultLanguage is the response language used when none is configured.
const DefaultLanguage = "English"

// ErrTemplateParse indicates a custom template could not be parsed.
var ErrTemplateParse = errors.New("prompt: template parsing failed")

// Context holds the optional snippets that accompany an answer.
type Context struct {
	// Elapsed is the advisory time the student spent. Zero or negative omits it.
	Elapsed time.Duration

	// Notes is study-note text used only to calibrate grading.
	Notes string

	// Booklist is reference-list text the model may cite.
	Booklist string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLanguage sets the language the model must answer in.
func WithLanguage(lang string) Option {
	return func(b *Builder) {
		if s := strings.TrimSpace(lang); s != "" {
			b.language = s
		}
	}
}

// Builder renders grading prompts. It is immutable after construction and
// safe for concurrent use.
type Builder struct {
	language string
	system   *template.Template
	user     *template.Template
}

// NewBuilder parses the grading templates once and applies options.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{language: DefaultLanguage}
	for _, opt := range opts {
		opt(b)
	}

	sys, err := template.New("system").Parse(systemTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: system: %w", ErrTemplateParse, err)
	}
	usr, err := template.New("user").Funcs(template.FuncMap{
		"points": FormatPoints,
	}).Parse(userTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: user: %w", ErrTemplateParse, err)
	}
	b.system = sys
	b.user = usr
	return b, nil
}

// MustNewBuilder is NewBuilder for package-level initialization; it panics if
// the built-in templates fail to parse.
func MustNewBuilder(opts ...Option) *Builder {
	b, err := NewBuilder(opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Language returns the configured response language.
func (b *Builder) Language() string { return b.language }

type userData struct {
	Section  string
	Points   float64
	Question string
	Topics   []string
	Elapsed  string
	Answer   string
	Notes    string
	Booklist string
}

// Build returns the system and user messages for one grading attempt.
// maxScore is taken from q.Points(). Absent optional fields are omitted.
func (b *Builder) Build(q domain.Question, answer string, c Context) (domain.Prompt, error) {
	var sys bytes.Buffer
	if err := b.system.Execute(&sys, struct{ Language string }{b.language}); err != nil {
		return domain.Prompt{}, fmt.Errorf("render system prompt: %w", err)
	}

	data := userData{
		Section:  strings.TrimSpace(q.Section),
		Points:   q.Points(),
		Question: strings.TrimSpace(q.Prompt),
		Topics:   nonBlank(q.Topics),
		Elapsed:  FormatElapsed(c.Elapsed),
		Answer:   answer,
		Notes:    strings.TrimSpace(c.Notes),
		Booklist: strings.TrimSpace(c.Booklist),
	}

	var usr bytes.Buffer
	if err := b.user.Execute(&usr, data); err != nil {
		return domain.Prompt{}, fmt.Errorf("render user prompt: %w", err)
	}

	return domain.Prompt{
		System: domain.ChatMessage{Role: domain.RoleSystem, Content: strings.TrimSpace(sys.String())},
		User:   domain.ChatMessage{Role: domain.RoleUser, Content: strings.TrimSpace(usr.String())},
	}, nil
}

// FormatPoints renders a point value without trailing zeros: 20 -> "20",
// 7.5 -> "7.5".
func FormatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatElapsed renders an elapsed-time hint in whole minutes and seconds.
// Non-positive durations render as the empty string.
func FormatElapsed(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	switch {
	case m == 0:
		return fmt.Sprintf("%d sec", s)
	case s == 0:
		return fmt.Sprintf("%d min", m)
	default:
		return fmt.Sprintf("%d min %d sec", m, s)
	}
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
