// Package worker wires grading workflows and activities into a Temporal worker.
package worker

import (
	"go.temporal.io/sdk/activity"
	sdkworker "go.temporal.io/sdk/worker"

	internalactivity "github.com/ahrav/exam-grader/internal/activity"
	"github.com/ahrav/exam-grader/internal/grading"
	"github.com/ahrav/exam-grader/internal/workflow"
	pkgactivity "github.com/ahrav/exam-grader/pkg/activity"
	"github.com/ahrav/exam-grader/pkg/events"
)

// Registrar is the part of a Temporal worker RegisterAll uses.
type Registrar interface {
	RegisterWorkflow(w any)
	RegisterActivityWithOptions(a any, options activity.RegisterOptions)
}

var _ Registrar = (sdkworker.Worker)(nil)

// RegisterAll registers GradingWorkflow and the GradeAnswer activity. Call it
// once during startup, before the worker starts.
func RegisterAll(w Registrar, grader grading.Grader, sink events.EventSink) {
	acts := internalactivity.NewActivities(pkgactivity.NewBaseActivities(sink), grader)

	w.RegisterWorkflow(workflow.GradingWorkflow)
	w.RegisterActivityWithOptions(acts.GradeAnswer, activity.RegisterOptions{
		Name: workflow.GradeAnswerActivity,
	})
}
