package grading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ahrav/exam-grader/internal/domain"
)

// Reply field names as they appear in the model's JSON.
const (
	fieldScore             = "score"
	fieldRationale         = "rationale"
	fieldStrengths         = "strengths"
	fieldMissingPoints     = "missingPoints"
	fieldImprovements      = "improvements"
	fieldSuggestedOutline  = "suggestedOutline"
	fieldBooklistAlignment = "booklistAlignment"
	fieldTopics            = "topics"
	fieldRefsToReview      = "refsToReview"
	fieldNextDrill         = "nextDrill"
	fieldPrompt            = "prompt"
	fieldTimeboxMinutes    = "timeboxMinutes"
)

// Normalize turns whatever the model returned into a well-formed
// GradingResult. It never panics and never fails.
//
// maxScore is authoritative and replaces any value the model claimed. The
// score is coerced to a number and clamped to [0, maxScore]. Array fields that
// are missing or not arrays become empty, and non-string elements are dropped;
// a scalar is never promoted to a one-element array.
func Normalize(v any, maxScore float64) domain.GradingResult {
	if math.IsNaN(maxScore) || math.IsInf(maxScore, 0) || maxScore < 0 {
		maxScore = 0
	}

	obj := asObject(v)

	return domain.GradingResult{
		Score:             clampScore(obj[fieldScore], maxScore),
		MaxScore:          maxScore,
		Rationale:         asString(obj[fieldRationale]),
		Strengths:         stringSlice(obj[fieldStrengths]),
		MissingPoints:     stringSlice(obj[fieldMissingPoints]),
		Improvements:      stringSlice(obj[fieldImprovements]),
		SuggestedOutline:  stringSlice(obj[fieldSuggestedOutline]),
		BooklistAlignment: normalizeBooklist(obj[fieldBooklistAlignment]),
		NextDrill:         normalizeNextDrill(obj[fieldNextDrill]),
	}
}

// asObject returns v as a JSON object. Typed results are round-tripped
// through JSON so a normalized result can be normalized again.
func asObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case domain.GradingResult, *domain.GradingResult:
		if p, ok := t.(*domain.GradingResult); ok && p == nil {
			return nil
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil
		}
		return m
	default:
		return nil
	}
}

func clampScore(v any, maxScore float64) float64 {
	score, ok := toNumber(v)
	if !ok {
		return 0
	}
	return clamp(score, 0, maxScore)
}

func normalizeBooklist(v any) domain.BooklistAlignment {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.EmptyBooklistAlignment()
	}
	return domain.BooklistAlignment{
		Topics:       stringSlice(obj[fieldTopics]),
		RefsToReview: stringSlice(obj[fieldRefsToReview]),
	}
}

func normalizeNextDrill(v any) domain.NextDrill {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.DefaultNextDrill()
	}

	minutes := domain.DefaultTimeboxMinutes
	if n, ok := toNumber(obj[fieldTimeboxMinutes]); ok {
		minutes = int(clamp(math.Round(n), domain.MinTimeboxMinutes, domain.MaxTimeboxMinutes))
	}
	return domain.NextDrill{
		Prompt:         asString(obj[fieldPrompt]),
		TimeboxMinutes: minutes,
	}
}

// toNumber accepts JSON numbers and numeric strings. Non-finite values are
// rejected.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// stringSlice keeps the string elements of an array value, in order.
func stringSlice(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
