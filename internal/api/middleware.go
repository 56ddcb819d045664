package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ahrav/exam-grader/internal/llm/providers"
	"github.com/ahrav/exam-grader/internal/metrics"
)

// observe logs each request and records HTTP metrics keyed by the matched
// route pattern. The chi request id is propagated to the grading core.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = providers.WithRequestID(ctx, id)
			ww.Header().Set(middleware.RequestIDHeader, id)
		}

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		duration := time.Since(start)

		tags := map[string]string{
			"route":       route,
			"method":      r.Method,
			"status_code": strconv.Itoa(status),
		}
		s.metrics.IncrementCounter(metrics.HTTPRequestsTotal, tags, 1)
		s.metrics.RecordHistogram(metrics.HTTPRequestDuration, tags, float64(duration.Milliseconds()))

		s.logger.InfoContext(ctx, "http request",
			"request_id", middleware.GetReqID(ctx),
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
		)
	})
}
