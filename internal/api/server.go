// Package api exposes grading over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ahrav/exam-grader/internal/grading"
	"github.com/ahrav/exam-grader/internal/llm/providers"
	"github.com/ahrav/exam-grader/internal/questionbank"
)

// CredentialHeader carries the caller's provider API key. Keys are never
// accepted in the JSON body so request bodies can be logged safely.
const CredentialHeader = "X-Provider-Key"

// maxBodyBytes bounds a grading request body.
const maxBodyBytes = 1 << 20

// Options configures a Server. Zero values disable the related feature.
type Options struct {
	// Bank resolves questionId references. Nil disables lookups.
	Bank questionbank.Bank

	// Logger receives one line per request. Nil uses slog.Default().
	Logger *slog.Logger

	// Metrics records HTTP request counters and latency.
	Metrics providers.Metrics

	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string

	// RequestTimeout bounds each request. Zero means no timeout.
	RequestTimeout time.Duration
}

// Server holds the HTTP handlers' dependencies.
type Server struct {
	grader  grading.Grader
	bank    questionbank.Bank
	logger  *slog.Logger
	metrics providers.Metrics
	opts    Options
}

// NewServer creates a Server over grader.
func NewServer(grader grading.Grader, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = providers.NewNoOpMetrics()
	}
	return &Server{
		grader:  grader,
		bank:    opts.Bank,
		logger:  logger,
		metrics: m,
		opts:    opts,
	}
}

// Routes builds the router.
//
//	POST /v1/grade            grade one answer
//	GET  /v1/questions        list the question bank
//	GET  /v1/questions/{id}   fetch one question
//	GET  /healthz             liveness
//	GET  /metrics             Prometheus exposition, when configured
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.observe, middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", CredentialHeader, middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/grade", s.handleGrade)
		v1.Get("/questions", s.handleListQuestions)
		v1.Get("/questions/{id}", s.handleGetQuestion)
	})
	return r
}
