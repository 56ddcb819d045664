// Package grading orchestrates a single grading attempt: build the prompt,
// call the selected provider once, recover JSON from the reply and normalize
// it into a GradingResult.
package grading

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/exam-grader/internal/domain"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
	"github.com/ahrav/exam-grader/internal/llm/jsonextract"
	"github.com/ahrav/exam-grader/internal/llm/providers"
	"github.com/ahrav/exam-grader/internal/prompt"
)

// ErrNoRouter is returned by NewService when no router is supplied.
var ErrNoRouter = errors.New("grading: router is required")

// Metric names recorded per grading attempt.
const (
	MetricAttemptsTotal = "grading.attempts.total"
	MetricScoreRatio    = "grading.score.ratio"
)

// Outcome labels for MetricAttemptsTotal.
const (
	OutcomeGraded   = "graded"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Grader is the caller-facing grading operation.
type Grader interface {
	Grade(ctx context.Context, req domain.GradingRequest) (*domain.Grade, error)
}

// Service implements Grader. It holds no per-attempt state and is safe for
// concurrent use.
type Service struct {
	router  providers.Router
	builder *prompt.Builder
	chain   jsonextract.Chain
	logger  *slog.Logger
	metrics providers.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m providers.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithBuilder replaces the default prompt builder.
func WithBuilder(b *prompt.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithChain replaces the JSON extraction chain.
func WithChain(c jsonextract.Chain) Option {
	return func(s *Service) {
		if len(c) > 0 {
			s.chain = c
		}
	}
}

// NewService creates a grading service over router.
func NewService(router providers.Router, opts ...Option) (*Service, error) {
	if router == nil {
		return nil, ErrNoRouter
	}
	s := &Service{
		router:  router,
		chain:   jsonextract.DefaultChain,
		logger:  slog.Default(),
		metrics: providers.NewNoOpMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		b, err := prompt.NewBuilder()
		if err != nil {
			return nil, err
		}
		s.builder = b
	}
	return s, nil
}

// Grade runs one grading attempt.
//
// Request validation and adapter failures are returned unchanged; the
// service never retries. A reply without a usable JSON object is not an
// error: it yields the fallback result with Parsed=false and the raw text.
func (s *Service) Grade(ctx context.Context, req domain.GradingRequest) (*domain.Grade, error) {
	requestID := providers.RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
		ctx = providers.WithRequestID(ctx, requestID)
	}

	adapter := s.router.Pick(req.Provider)
	model := adapter.Model(req.Model)
	log := s.logger.With(
		"request_id", requestID,
		"question_id", req.Question.ID,
		"provider", adapter.Name(),
		"model", model,
	)
	tags := map[string]string{"provider": string(adapter.Name())}

	if err := req.Validate(); err != nil {
		s.recordOutcome(tags, OutcomeError, llmerrors.KindOf(err))
		log.WarnContext(ctx, "grading request rejected", "error_kind", llmerrors.KindOf(err), "error", err.Error())
		return nil, err
	}

	maxScore := req.Question.Points()
	p, err := s.builder.Build(req.Question, req.Answer, prompt.Context{
		Elapsed:  time.Duration(req.ElapsedSeconds * float64(time.Second)),
		Notes:    req.Notes,
		Booklist: req.Booklist,
	})
	if err != nil {
		s.recordOutcome(tags, OutcomeError, llmerrors.KindOf(err))
		log.ErrorContext(ctx, "prompt build failed", "error", err.Error())
		return nil, err
	}

	start := time.Now()
	raw, err := adapter.Send(ctx, providers.Call{
		System:     p.System.Content,
		User:       p.User.Content,
		Model:      req.Model,
		Credential: req.Credential,
	})
	duration := time.Since(start)
	if err != nil {
		kind := llmerrors.KindOf(err)
		s.recordOutcome(tags, OutcomeError, kind)
		log.ErrorContext(ctx, "grading failed",
			"duration_ms", duration.Milliseconds(),
			"error_kind", kind,
			"error", err.Error(),
		)
		return nil, err
	}

	grade := &domain.Grade{
		Raw:      raw,
		Provider: adapter.Name(),
		Model:    model,
	}

	obj, strategy, ok := jsonextract.ExtractObjectWith(s.chain, raw)
	if !ok {
		grade.Result = domain.FallbackResult(maxScore)
		s.recordOutcome(tags, OutcomeFallback, "")
		log.WarnContext(ctx, "grading reply not parseable",
			"duration_ms", duration.Milliseconds(),
			"reply_length", len(raw),
		)
		return grade, nil
	}

	grade.Result = Normalize(obj, maxScore)
	grade.Parsed = true
	s.recordOutcome(tags, OutcomeGraded, "")
	if maxScore > 0 {
		s.metrics.RecordHistogram(MetricScoreRatio, tags, grade.Result.Score/maxScore)
	}
	log.InfoContext(ctx, "answer graded",
		"duration_ms", duration.Milliseconds(),
		"extract_strategy", strategy,
		"score", grade.Result.Score,
		"max_score", maxScore,
	)
	return grade, nil
}

func (s *Service) recordOutcome(base map[string]string, outcome string, kind llmerrors.Kind) {
	tags := make(map[string]string, len(base)+2)
	for k, v := range base {
		tags[k] = v
	}
	tags["outcome"] = outcome
	if kind != "" {
		tags["error_kind"] = string(kind)
	}
	s.metrics.IncrementCounter(MetricAttemptsTotal, tags, 1)
}
