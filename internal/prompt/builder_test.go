package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/exam-grader/internal/domain"
)

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:         "q-1",
		Section:    "Part II",
		MaxScore:   20,
		Prompt:     "Explain the separation of powers.",
		Topics:     []string{"constitution", " ", "checks and balances"},
		HeadingKey: "ch3",
	}
}

func TestBuilder_Build(t *testing.T) {
	b := MustNewBuilder()

	tests := []struct {
		name     string
		question domain.Question
		answer   string
		ctx      Context
		contains []string
		excludes []string
	}{
		{
			name:     "minimal_question_omits_optional_sections",
			question: domain.Question{ID: "q", MaxScore: 10, Prompt: "Define inflation."},
			answer:   "Rising price levels.",
			contains: []string{"Define inflation.", "Rising price levels.", "10 points", "The score must not exceed 10."},
			excludes: []string{"## Topics", "## Time spent", "## Study notes", "## Booklist references"},
		},
		{
			name:     "all_optional_sections_in_order",
			question: sampleQuestion(),
			answer:   "Power is split between branches.",
			ctx: Context{
				Elapsed:  12*time.Minute + 30*time.Second,
				Notes:    "Mention Montesquieu.",
				Booklist: "Smith, Constitutional Law, ch.3",
			},
			contains: []string{
				"(Part II) - 20 points",
				"- constitution\n- checks and balances",
				"12 min 30 sec",
				"Mention Montesquieu.",
				"Smith, Constitutional Law, ch.3",
				"for calibration, do not quote verbatim",
				"citable, do not fabricate",
			},
		},
		{
			name:     "fractional_points_rendered_literally",
			question: domain.Question{ID: "q", MaxScore: 7.5, Prompt: "Why?"},
			answer:   "Because.",
			contains: []string{"7.5 points", "between 0 and 7.5"},
		},
		{
			name:     "template_syntax_in_answer_is_not_interpreted",
			question: domain.Question{ID: "q", MaxScore: 5, Prompt: "Q"},
			answer:   "{{.Answer}} and {{ printf \"x\" }}",
			contains: []string{"{{.Answer}} and {{ printf \"x\" }}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := b.Build(tt.question, tt.answer, tt.ctx)
			require.NoError(t, err)

			msgs := p.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, domain.RoleSystem, msgs[0].Role)
			assert.Equal(t, domain.RoleUser, msgs[1].Role)

			for _, s := range tt.contains {
				assert.Contains(t, p.User.Content, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, p.User.Content, s)
			}
		})
	}
}

func TestBuilder_UserMessageOrder(t *testing.T) {
	b := MustNewBuilder()
	p, err := b.Build(sampleQuestion(), "ANSWER-TEXT", Context{
		Elapsed:  time.Minute,
		Notes:    "NOTES-TEXT",
		Booklist: "BOOKLIST-TEXT",
	})
	require.NoError(t, err)

	order := []string{
		"Explain the separation of powers.",
		"## Topics",
		"## Time spent",
		"ANSWER-TEXT",
		"NOTES-TEXT",
		"BOOKLIST-TEXT",
		"## Required output JSON schema",
		"The score must not exceed 20.",
	}
	last := -1
	for _, s := range order {
		idx := strings.Index(p.User.Content, s)
		require.GreaterOrEqual(t, idx, 0, "missing %q", s)
		assert.Greater(t, idx, last, "%q out of order", s)
		last = idx
	}
}

func TestBuilder_SystemMessage(t *testing.T) {
	p, err := MustNewBuilder(WithLanguage("Traditional Chinese")).Build(sampleQuestion(), "a", Context{})
	require.NoError(t, err)

	sys := p.System.Content
	assert.Contains(t, sys, "Always respond in Traditional Chinese.")
	for _, criterion := range []string{"Conceptual correctness", "point allocation", "Structural clarity", "examples"} {
		assert.Contains(t, sys, criterion)
	}
	assert.Contains(t, sys, "raw JSON")
	assert.Contains(t, sys, "code fences")
}

func TestBuilder_Deterministic(t *testing.T) {
	b := MustNewBuilder()
	c := Context{Elapsed: 90 * time.Second, Notes: "n", Booklist: "b"}
	p1, err := b.Build(sampleQuestion(), "same", c)
	require.NoError(t, err)
	p2, err := b.Build(sampleQuestion(), "same", c)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestBuilder_AnswerAndPointsAlwaysPresent(t *testing.T) {
	b := MustNewBuilder()
	points := []float64{0, 1, 2.25, 20, 100, 1e6}
	answers := []string{"x", "multi\nline\nanswer", "  padded  ", "unicode: 三權分立", "` ``` {}"}

	for _, pts := range points {
		for _, ans := range answers {
			q := domain.Question{ID: "q", MaxScore: pts, Prompt: "p"}
			p, err := b.Build(q, ans, Context{})
			require.NoError(t, err)
			assert.Contains(t, p.User.Content, ans)
			assert.Contains(t, p.User.Content, FormatPoints(pts))
		}
	}
}

func TestBuilder_NegativePointsClampToZero(t *testing.T) {
	p, err := MustNewBuilder().Build(domain.Question{ID: "q", MaxScore: -3, Prompt: "p"}, "a", Context{})
	require.NoError(t, err)
	assert.Contains(t, p.User.Content, "0 points")
	assert.NotContains(t, p.User.Content, "-3")
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, ""},
		{-time.Second, ""},
		{45 * time.Second, "45 sec"},
		{2 * time.Minute, "2 min"},
		{150 * time.Second, "2 min 30 sec"},
		{1499 * time.Millisecond, "1 sec"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatElapsed(tt.in), tt.in.String())
	}
}

func TestWithLanguage_IgnoresBlank(t *testing.T) {
	assert.Equal(t, DefaultLanguage, MustNewBuilder(WithLanguage("  ")).Language())
	assert.Equal(t, "German", MustNewBuilder(WithLanguage("German")).Language())
}
