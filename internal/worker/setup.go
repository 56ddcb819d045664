package worker

import (
	"fmt"
	"log/slog"

	"github.com/ahrav/exam-grader/internal/grading"
	"github.com/ahrav/exam-grader/internal/llm/configuration"
	"github.com/ahrav/exam-grader/internal/llm/providers"
	"github.com/ahrav/exam-grader/internal/prompt"
)

// InitializeGrader builds the provider router and grading service from cfg.
// Both binaries share it so HTTP and Temporal grading behave identically.
func InitializeGrader(
	cfg *configuration.Config,
	logger *slog.Logger,
	metrics providers.Metrics,
) (*grading.Service, error) {
	if cfg == nil {
		cfg = configuration.DefaultConfig()
	}

	router, err := providers.NewRouter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider router: %w", err)
	}
	router = providers.Instrumented(router, logger, metrics)

	builder, err := prompt.NewBuilder(prompt.WithLanguage(cfg.Prompt.Language))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt builder: %w", err)
	}

	svc, err := grading.NewService(router,
		grading.WithLogger(logger),
		grading.WithMetrics(metrics),
		grading.WithBuilder(builder),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize grading service: %w", err)
	}
	return svc, nil
}
