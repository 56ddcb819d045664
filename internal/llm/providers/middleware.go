package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/exam-grader/internal/domain"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// Metric names recorded by the instrumented adapter.
const (
	MetricRequestsTotal   = "llm.requests.total"
	MetricRequestsSuccess = "llm.requests.success"
	MetricRequestsErrors  = "llm.requests.errors"
	MetricRequestDuration = "llm.request.duration_ms"
	MetricResponseLength  = "llm.response.length_chars"
)

// Metrics provides observability data collection for provider calls.
// Supports counters, histograms, and gauges with tag-based dimensionality.
type Metrics interface {
	IncrementCounter(name string, tags map[string]string, value float64)
	RecordHistogram(name string, tags map[string]string, value float64)
	SetGauge(name string, tags map[string]string, value float64)
}

// NoOpMetrics discards all data. It is the default when no collector is wired.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a no-op metrics collector.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (n *NoOpMetrics) IncrementCounter(_ string, _ map[string]string, _ float64) {}

func (n *NoOpMetrics) RecordHistogram(_ string, _ map[string]string, _ float64) {}

func (n *NoOpMetrics) SetGauge(_ string, _ map[string]string, _ float64) {}

type requestIDKey struct{}

// WithRequestID attaches a correlation id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the correlation id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// instrumented decorates an Adapter with structured logging and metrics.
// Prompt text, reply text and credentials are never logged; only lengths.
type instrumented struct {
	next    Adapter
	logger  *slog.Logger
	metrics Metrics
}

// Instrument wraps next with request logging and metrics. It adds no retry
// and returns next's result and error unchanged.
func Instrument(next Adapter, logger *slog.Logger, metrics Metrics) Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewNoOpMetrics()
	}
	return &instrumented{next: next, logger: logger, metrics: metrics}
}

func (m *instrumented) Name() domain.Provider { return m.next.Name() }

func (m *instrumented) Model(requested string) string { return m.next.Model(requested) }

// Send logs the call lifecycle around the wrapped adapter.
func (m *instrumented) Send(ctx context.Context, call Call) (string, error) {
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
		ctx = WithRequestID(ctx, requestID)
	}

	// The model name is caller supplied, so it goes to logs only.
	model := m.next.Model(call.Model)
	baseTags := map[string]string{"provider": string(m.next.Name())}

	m.logger.DebugContext(ctx, "LLM request started",
		"request_id", requestID,
		"provider", m.next.Name(),
		"model", model,
		"system_prompt_length", len(call.System),
		"user_prompt_length", len(call.User),
		"credential_supplied", call.Credential != "",
	)
	m.metrics.IncrementCounter(MetricRequestsTotal, baseTags, 1)

	start := time.Now()
	text, err := m.next.Send(ctx, call)
	duration := time.Since(start)

	m.metrics.RecordHistogram(MetricRequestDuration, baseTags, float64(duration.Milliseconds()))

	if err != nil {
		kind := llmerrors.KindOf(err)
		errorTags := copyTags(baseTags)
		errorTags["error_kind"] = string(kind)
		m.metrics.IncrementCounter(MetricRequestsErrors, errorTags, 1)

		m.logger.ErrorContext(ctx, "LLM request failed",
			"request_id", requestID,
			"provider", m.next.Name(),
			"model", model,
			"duration_ms", duration.Milliseconds(),
			"error_kind", kind,
			"error", err.Error(),
		)
		return text, err
	}

	m.metrics.IncrementCounter(MetricRequestsSuccess, baseTags, 1)
	m.metrics.RecordHistogram(MetricResponseLength, baseTags, float64(len(text)))
	m.logger.InfoContext(ctx, "LLM request completed",
		"request_id", requestID,
		"provider", m.next.Name(),
		"model", model,
		"duration_ms", duration.Milliseconds(),
		"response_length", len(text),
	)
	return text, nil
}

// copyTags creates immutable copies of metric tag maps.
func copyTags(original map[string]string) map[string]string {
	tagsCopy := make(map[string]string, len(original))
	for k, v := range original {
		tagsCopy[k] = v
	}
	return tagsCopy
}
