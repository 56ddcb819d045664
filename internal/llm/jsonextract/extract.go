// Package jsonextract recovers a JSON value from free-form model output.
//
// Models are asked for raw JSON but routinely wrap it in prose or Markdown
// code fences. Extraction runs an ordered chain of strategies and returns the
// first value that parses. Failing to find JSON is an expected outcome, not
// an error.
package jsonextract

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

// Strategy attempts to pull one JSON value out of text.
type Strategy interface {
	// Name identifies the strategy in logs and tests.
	Name() string
	// Extract returns the decoded value and true on success.
	Extract(text string) (any, bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc struct {
	name string
	fn   func(string) (any, bool)
}

// NewStrategy wraps fn as a named Strategy.
func NewStrategy(name string, fn func(string) (any, bool)) StrategyFunc {
	return StrategyFunc{name: name, fn: fn}
}

func (s StrategyFunc) Name() string                    { return s.name }
func (s StrategyFunc) Extract(text string) (any, bool) { return s.fn(text) }

// Built-in strategies, in the order DefaultChain tries them.
var (
	Direct    = NewStrategy("direct", direct)
	Fenced    = NewStrategy("fenced", fenced)
	BraceSpan = NewStrategy("brace_span", braceSpan)
)

// DefaultChain is the extraction order used by Extract.
var DefaultChain = Chain{Direct, Fenced, BraceSpan}

// Chain is an ordered list of strategies; the first success wins.
type Chain []Strategy

// Extract runs each strategy in order.
func (c Chain) Extract(text string) (any, bool) {
	v, _, ok := c.ExtractWith(text)
	return v, ok
}

// ExtractWith is Extract that also reports which strategy succeeded.
func (c Chain) ExtractWith(text string) (any, string, bool) {
	for _, s := range c {
		if v, ok := s.Extract(text); ok {
			return v, s.Name(), true
		}
	}
	return nil, "", false
}

// Extract returns the first JSON value DefaultChain finds in text.
func Extract(text string) (any, bool) {
	return DefaultChain.Extract(text)
}

// ExtractObject is Extract restricted to a top-level JSON object. Arrays,
// strings, numbers, booleans and null count as extraction failure.
func ExtractObject(text string) (map[string]any, bool) {
	obj, _, ok := ExtractObjectWith(DefaultChain, text)
	return obj, ok
}

// ExtractObjectWith runs c and requires the first value it finds to be an
// object. A first success that is not an object ends the search.
func ExtractObjectWith(c Chain, text string) (map[string]any, string, bool) {
	v, name, ok := c.ExtractWith(text)
	if !ok {
		return nil, "", false
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return nil, name, false
	}
	return obj, name, true
}

func decode(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return floatNumbers(v), true
}

// floatNumbers turns every json.Number that fits a float64 into a float64.
// Numbers outside float64 range stay json.Number so the surrounding value
// still decodes.
func floatNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = floatNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = floatNumbers(e)
		}
		return t
	default:
		return v
	}
}

func direct(text string) (any, bool) {
	return decode(text)
}

// fencePattern matches a Markdown code fence with an optional json label.
// The body is matched lazily so the first closing fence ends the block.
var fencePattern = regexp.MustCompile("(?is)```(?:json)?[ \\t]*\\r?\\n?(.*?)```")

func fenced(text string) (any, bool) {
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		if v, ok := decode(m[1]); ok {
			return v, true
		}
	}
	return nil, false
}

func braceSpan(text string) (any, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}
	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return nil, false
	}
	return decode(text[start : end+1])
}
