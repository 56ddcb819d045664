package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/exam-grader/internal/domain"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// GradeAnswerActivity is the registered name of the grading activity.
const GradeAnswerActivity = "GradeAnswer"

// Activity timing for GradingWorkflow.
const (
	gradeStartToClose = 2 * time.Minute
	gradeMaxAttempts  = 3
)

// nonRetryableKinds never benefit from another attempt.
var nonRetryableKinds = []string{
	string(llmerrors.KindMissingCredential),
	string(llmerrors.KindInvalidCredentialFormat),
	string(llmerrors.KindInvalidModel),
	string(llmerrors.KindValidation),
	string(llmerrors.KindCanceled),
}

// GradingWorkflow grades one answer through the GradeAnswer activity.
// Transient failures (transport, empty reply, throttling) are retried by the
// activity retry policy; the grading core itself still sends exactly one
// request per attempt.
func GradingWorkflow(ctx workflow.Context, req domain.GradingRequest) (*domain.Grade, error) {
	if err := req.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid grading request",
			string(llmerrors.KindValidation),
			err,
		)
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: gradeStartToClose,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        gradeMaxAttempts,
			NonRetryableErrorTypes: nonRetryableKinds,
		},
	})

	logger := workflow.GetLogger(ctx)
	logger.Info("grading workflow started", "question_id", req.Question.ID, "provider", req.ResolvedProvider())

	var grade domain.Grade
	if err := workflow.ExecuteActivity(ctx, GradeAnswerActivity, req).Get(ctx, &grade); err != nil {
		logger.Error("grading workflow failed", "question_id", req.Question.ID, "error", err)
		return nil, err
	}

	logger.Info("grading workflow completed",
		"question_id", req.Question.ID,
		"score", grade.Result.Score,
		"parsed", grade.Parsed)
	return &grade, nil
}
