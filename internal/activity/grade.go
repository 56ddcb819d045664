// Package activity runs grading as a Temporal activity.
package activity

import (
	"context"

	"github.com/google/uuid"

	"github.com/ahrav/exam-grader/internal/domain"
	"github.com/ahrav/exam-grader/internal/grading"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
	"github.com/ahrav/exam-grader/internal/llm/providers"
	pkgactivity "github.com/ahrav/exam-grader/pkg/activity"
	"github.com/ahrav/exam-grader/pkg/events"
)

// Event emitted after every successful grading attempt.
const (
	EventAnswerGraded = "grading.answer_graded"
	eventSource       = "grading-activity"
)

// AnswerGraded is the payload of EventAnswerGraded. It carries no answer or
// prompt text.
type AnswerGraded struct {
	QuestionID string  `json:"question_id"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Parsed     bool    `json:"parsed"`
}

// Activities exposes grading to Temporal workers.
type Activities struct {
	pkgactivity.BaseActivities
	grader grading.Grader
}

// NewActivities creates grading activities over grader.
func NewActivities(base pkgactivity.BaseActivities, grader grading.Grader) *Activities {
	return &Activities{BaseActivities: base, grader: grader}
}

// GradeAnswer grades one answer.
//
// Credentials never travel through workflow history: GradingRequest.Credential
// is not serialized, so the worker's configured or environment key is used.
func (a *Activities) GradeAnswer(ctx context.Context, req domain.GradingRequest) (*domain.Grade, error) {
	if err := req.Validate(); err != nil {
		return nil, nonRetryable(string(llmerrors.KindValidation), err, "invalid grading request")
	}

	wfCtx := a.GetWorkflowContext(ctx)
	if providers.RequestIDFrom(ctx) == "" {
		id := uuid.New().String()
		if wfCtx.WorkflowID != "" {
			id = wfCtx.WorkflowID + "/" + wfCtx.ActivityID
		}
		ctx = providers.WithRequestID(ctx, id)
	}

	pkgactivity.SafeLog(ctx, "grading answer",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"attempt", wfCtx.Attempt,
		"question_id", req.Question.ID,
		"provider", req.ResolvedProvider())
	a.RecordHeartbeat(ctx, "grading "+req.Question.ID)

	grade, err := a.grader.Grade(ctx, req)
	if err != nil {
		pkgactivity.SafeLogError(ctx, "grading failed",
			"question_id", req.Question.ID,
			"error_kind", llmerrors.KindOf(err))
		return nil, toApplicationError(err)
	}

	a.emitAnswerGraded(ctx, wfCtx, req, grade)
	return grade, nil
}

func (a *Activities) emitAnswerGraded(
	ctx context.Context,
	wfCtx pkgactivity.WorkflowContext,
	req domain.GradingRequest,
	grade *domain.Grade,
) {
	seed := wfCtx.IdempotencySeed()
	if wfCtx.WorkflowID == "" {
		seed = providers.RequestIDFrom(ctx)
	}
	env, err := events.NewEnvelope(EventAnswerGraded, eventSource, seed, AnswerGraded{
		QuestionID: req.Question.ID,
		Provider:   string(grade.Provider),
		Model:      grade.Model,
		Score:      grade.Result.Score,
		MaxScore:   grade.Result.MaxScore,
		Parsed:     grade.Parsed,
	})
	if err != nil {
		pkgactivity.SafeLogError(ctx, "build event failed", "event_type", EventAnswerGraded, "error", err)
		return
	}
	env.WorkflowID = wfCtx.WorkflowID
	env.RunID = wfCtx.RunID
	env.RequestID = providers.RequestIDFrom(ctx)
	a.EmitEventSafe(ctx, env)
}
