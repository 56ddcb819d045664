package domain

// Bounds and defaults for the follow-up drill.
const (
	MinTimeboxMinutes     = 5
	MaxTimeboxMinutes     = 120
	DefaultTimeboxMinutes = 15
)

// FallbackRationale is the rationale returned when the model reply contained
// no usable JSON object.
const FallbackRationale = "The grading reply could not be parsed. No score was assigned; please retry grading."

// BooklistAlignment links the answer to the reference booklist.
type BooklistAlignment struct {
	Topics       []string `json:"topics"`
	RefsToReview []string `json:"refsToReview"`
}

// NextDrill is a short follow-up practice task.
type NextDrill struct {
	Prompt         string `json:"prompt"`
	TimeboxMinutes int    `json:"timeboxMinutes"`
}

// GradingResult is the guaranteed-shape outcome of a grading attempt.
// After normalization every slice is non-nil, 0 <= Score <= MaxScore and
// NextDrill.TimeboxMinutes lies in [MinTimeboxMinutes, MaxTimeboxMinutes].
type GradingResult struct {
	Score             float64           `json:"score"`
	MaxScore          float64           `json:"maxScore"`
	Rationale         string            `json:"rationale"`
	Strengths         []string          `json:"strengths"`
	MissingPoints     []string          `json:"missingPoints"`
	Improvements      []string          `json:"improvements"`
	SuggestedOutline  []string          `json:"suggestedOutline"`
	BooklistAlignment BooklistAlignment `json:"booklistAlignment"`
	NextDrill         NextDrill         `json:"nextDrill"`
}

// EmptyBooklistAlignment returns an alignment with empty, non-nil slices.
func EmptyBooklistAlignment() BooklistAlignment {
	return BooklistAlignment{Topics: []string{}, RefsToReview: []string{}}
}

// DefaultNextDrill returns the drill used when the model supplied none.
func DefaultNextDrill() NextDrill {
	return NextDrill{Prompt: "", TimeboxMinutes: DefaultTimeboxMinutes}
}

// FallbackResult builds the degenerate result used when no JSON object could
// be extracted from the model reply.
func FallbackResult(maxScore float64) GradingResult {
	if maxScore < 0 {
		maxScore = 0
	}
	return GradingResult{
		Score:             0,
		MaxScore:          maxScore,
		Rationale:         FallbackRationale,
		Strengths:         []string{},
		MissingPoints:     []string{},
		Improvements:      []string{},
		SuggestedOutline:  []string{},
		BooklistAlignment: EmptyBooklistAlignment(),
		NextDrill:         DefaultNextDrill(),
	}
}

// Grade is what the orchestrator returns for one attempt: the normalized
// result plus the raw model text kept for diagnostics.
type Grade struct {
	Result GradingResult `json:"result"`
	Raw    string        `json:"raw"`

	// Parsed is false when Result is the fallback produced for an
	// unparseable reply.
	Parsed bool `json:"parsed"`

	Provider Provider `json:"provider"`
	Model    string   `json:"model,omitempty"`
}
