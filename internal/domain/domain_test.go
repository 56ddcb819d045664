package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
	}{
		{in: "openai", want: ProviderOpenAI},
		{in: " Google ", want: ProviderGoogle},
		{in: "gemini", want: ProviderGoogle},
		{in: "ANTHROPIC", want: ProviderAnthropic},
		{in: "claude", want: ProviderAnthropic},
		{in: "", want: DefaultProvider},
		{in: "mistral", want: DefaultProvider},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseProvider(tt.in))
		})
	}
	assert.Equal(t, []Provider{ProviderOpenAI, ProviderGoogle, ProviderAnthropic}, Providers())
}

func TestQuestion(t *testing.T) {
	q := Question{ID: "q", Prompt: "p", MaxScore: -2}
	assert.Equal(t, 0.0, q.Points())
	q.MaxScore = 12.5
	assert.Equal(t, 12.5, q.Points())

	assert.False(t, q.HasTopics())
	q.Topics = []string{" ", ""}
	assert.False(t, q.HasTopics())
	q.Topics = append(q.Topics, "federalism")
	assert.True(t, q.HasTopics())

	require.NoError(t, q.Validate())
	assert.Error(t, (&Question{Prompt: "p"}).Validate(), "id required")
	assert.Error(t, (&Question{ID: "q"}).Validate(), "prompt required")
}

func TestGradingRequest_Validate(t *testing.T) {
	valid := func() GradingRequest {
		return GradingRequest{
			Question: Question{ID: "q-1", Prompt: "Explain.", MaxScore: 10},
			Answer:   "An answer.",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*GradingRequest)
		wantErr error
	}{
		{name: "valid", mutate: func(*GradingRequest) {}},
		{name: "blank_answer", mutate: func(r *GradingRequest) { r.Answer = " \n\t" }, wantErr: ErrEmptyAnswer},
		{name: "missing_question_id", mutate: func(r *GradingRequest) { r.Question.ID = "" }, wantErr: ErrInvalidGradingRequest},
		{name: "missing_prompt", mutate: func(r *GradingRequest) { r.Question.Prompt = "" }, wantErr: ErrInvalidGradingRequest},
		{name: "negative_elapsed", mutate: func(r *GradingRequest) { r.ElapsedSeconds = -1 }, wantErr: ErrInvalidGradingRequest},
		{name: "unknown_provider_allowed", mutate: func(r *GradingRequest) { r.Provider = "mistral" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidGradingRequest)
		})
	}
}

func TestGradingRequest_CredentialNotSerialized(t *testing.T) {
	r := GradingRequest{Answer: "a", Credential: "sk-secret-value"}
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret-value")
	assert.Equal(t, ProviderOpenAI, r.ResolvedProvider())
}

func TestFallbackResult(t *testing.T) {
	r := FallbackResult(20)
	assert.Equal(t, 0.0, r.Score)
	assert.Equal(t, 20.0, r.MaxScore)
	assert.Equal(t, FallbackRationale, r.Rationale)
	assert.Equal(t, []string{}, r.Strengths)
	assert.Equal(t, []string{}, r.MissingPoints)
	assert.Equal(t, []string{}, r.Improvements)
	assert.Equal(t, []string{}, r.SuggestedOutline)
	assert.Equal(t, EmptyBooklistAlignment(), r.BooklistAlignment)
	assert.Equal(t, NextDrill{Prompt: "", TimeboxMinutes: DefaultTimeboxMinutes}, r.NextDrill)

	assert.Equal(t, 0.0, FallbackResult(-3).MaxScore)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"strengths":[]`, "empty lists serialize as arrays, not null")
}

func TestPromptMessages(t *testing.T) {
	p := Prompt{
		System: ChatMessage{Role: RoleSystem, Content: "sys"},
		User:   ChatMessage{Role: RoleUser, Content: "usr"},
	}
	msgs := p.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "usr", msgs[1].Content)
}
