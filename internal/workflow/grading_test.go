package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/exam-grader/internal/activity"
	"github.com/ahrav/exam-grader/internal/domain"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
	pkgactivity "github.com/ahrav/exam-grader/pkg/activity"
)

// scriptedGrader fails with errs in order, then succeeds.
type scriptedGrader struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *scriptedGrader) Grade(_ context.Context, req domain.GradingRequest) (*domain.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	result := domain.FallbackResult(req.Question.Points())
	result.Score = 3
	return &domain.Grade{Result: result, Raw: `{"score":3}`, Parsed: true, Provider: domain.ProviderOpenAI}, nil
}

func (s *scriptedGrader) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newEnv(t *testing.T, grader *scriptedGrader) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := activity.NewActivities(pkgactivity.NewBaseActivities(nil), grader)
	env.RegisterActivity(acts.GradeAnswer)
	return env
}

func sampleRequest() domain.GradingRequest {
	return domain.GradingRequest{
		Question: domain.Question{ID: "q-9", MaxScore: 5, Prompt: "Define due process."},
		Answer:   "Fair procedure before deprivation.",
	}
}

func TestGradingWorkflow_Success(t *testing.T) {
	grader := &scriptedGrader{}
	env := newEnv(t, grader)

	env.ExecuteWorkflow(GradingWorkflow, sampleRequest())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var got domain.Grade
	require.NoError(t, env.GetWorkflowResult(&got))
	assert.Equal(t, 3.0, got.Result.Score)
	assert.Equal(t, 5.0, got.Result.MaxScore)
	assert.Equal(t, 1, grader.count())
}

func TestGradingWorkflow_InvalidRequest(t *testing.T) {
	grader := &scriptedGrader{}
	env := newEnv(t, grader)

	req := sampleRequest()
	req.Answer = ""
	env.ExecuteWorkflow(GradingWorkflow, req)
	require.True(t, env.IsWorkflowCompleted())

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, env.GetWorkflowError(), &appErr)
	assert.Equal(t, string(llmerrors.KindValidation), appErr.Type())
	assert.True(t, appErr.NonRetryable())
	assert.Zero(t, grader.count())
}

func TestGradingWorkflow_RetriesTransientFailures(t *testing.T) {
	grader := &scriptedGrader{errs: []error{llmerrors.ErrEmptyReply}}
	env := newEnv(t, grader)

	env.ExecuteWorkflow(GradingWorkflow, sampleRequest())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 2, grader.count())
}

func TestGradingWorkflow_GivesUpAfterMaxAttempts(t *testing.T) {
	grader := &scriptedGrader{errs: []error{
		llmerrors.ErrEmptyReply, llmerrors.ErrEmptyReply, llmerrors.ErrEmptyReply, llmerrors.ErrEmptyReply,
	}}
	env := newEnv(t, grader)

	env.ExecuteWorkflow(GradingWorkflow, sampleRequest())
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, gradeMaxAttempts, grader.count())
}

func TestGradingWorkflow_CredentialFailureNotRetried(t *testing.T) {
	grader := &scriptedGrader{errs: []error{
		&llmerrors.CredentialError{Provider: "openai", Err: llmerrors.ErrMissingCredential},
	}}
	env := newEnv(t, grader)

	env.ExecuteWorkflow(GradingWorkflow, sampleRequest())
	require.True(t, env.IsWorkflowCompleted())

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, env.GetWorkflowError(), &appErr)
	assert.Equal(t, string(llmerrors.KindMissingCredential), appErr.Type())
	assert.Equal(t, 1, grader.count())
}

func TestGradingWorkflow_Deterministic(t *testing.T) {
	var results []float64
	for i := 0; i < 3; i++ {
		env := newEnv(t, &scriptedGrader{})
		env.ExecuteWorkflow(GradingWorkflow, sampleRequest())
		require.NoError(t, env.GetWorkflowError())

		var got domain.Grade
		require.NoError(t, env.GetWorkflowResult(&got))
		results = append(results, got.Result.Score)
	}
	assert.Equal(t, []float64{3, 3, 3}, results)
}
