// Package questionbank serves exam questions and their supplementary
// notes and booklist snippets from a read-only YAML file.
package questionbank

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/exam-grader/internal/domain"
)

// Errors returned by the bank.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrDuplicateID      = errors.New("duplicate question id")
	ErrInvalidBank      = errors.New("invalid question bank")
)

// Snippets holds the supplementary text attached to a heading.
type Snippets struct {
	// Notes calibrate the grader and must not be quoted back.
	Notes string `yaml:"notes" json:"notes,omitempty"`
	// Booklist lists references the grader may cite.
	Booklist string `yaml:"booklist" json:"booklist,omitempty"`
}

// Bank supplies questions and heading snippets. Implementations are
// read-only and safe for concurrent use.
type Bank interface {
	Question(id string) (domain.Question, error)
	Questions() []domain.Question
	Snippets(headingKey string) Snippets
}

// file is the on-disk layout.
type file struct {
	Questions []domain.Question  `yaml:"questions"`
	Headings  map[string]Snippets `yaml:"headings"`
}

// Static is an immutable in-memory Bank.
type Static struct {
	byID     map[string]domain.Question
	order    []string
	headings map[string]Snippets
}

// Load reads a bank from a YAML file.
func Load(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a bank from YAML. Unknown keys are rejected so typos in a
// bank file surface at startup.
func Parse(r io.Reader) (*Static, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc file
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBank, err)
	}
	return New(doc.Questions, doc.Headings)
}

// New builds a bank from questions and heading snippets. Every question is
// validated and IDs must be unique.
func New(questions []domain.Question, headings map[string]Snippets) (*Static, error) {
	b := &Static{
		byID:     make(map[string]domain.Question, len(questions)),
		order:    make([]string, 0, len(questions)),
		headings: make(map[string]Snippets, len(headings)),
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %w", ErrInvalidBank, i, err)
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidBank, ErrDuplicateID, q.ID)
		}
		q.Topics = append([]string(nil), q.Topics...)
		b.byID[q.ID] = q
		b.order = append(b.order, q.ID)
	}
	for k, s := range headings {
		b.headings[normalizeKey(k)] = Snippets{
			Notes:    strings.TrimSpace(s.Notes),
			Booklist: strings.TrimSpace(s.Booklist),
		}
	}
	return b, nil
}

// Question returns the question with id.
func (b *Static) Question(id string) (domain.Question, error) {
	q, ok := b.byID[id]
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	q.Topics = append([]string(nil), q.Topics...)
	return q, nil
}

// Questions returns every question in file order.
func (b *Static) Questions() []domain.Question {
	out := make([]domain.Question, 0, len(b.order))
	for _, id := range b.order {
		q := b.byID[id]
		q.Topics = append([]string(nil), q.Topics...)
		out = append(out, q)
	}
	return out
}

// Snippets returns the notes and booklist text for a heading. Unknown or
// empty keys yield empty snippets.
func (b *Static) Snippets(headingKey string) Snippets {
	if headingKey == "" {
		return Snippets{}
	}
	return b.headings[normalizeKey(headingKey)]
}

// Headings returns the known heading keys, sorted.
func (b *Static) Headings() []string {
	keys := make([]string, 0, len(b.headings))
	for k := range b.headings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
