// Command grader serves the exam grading HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/exam-grader/internal/api"
	"github.com/ahrav/exam-grader/internal/config"
	"github.com/ahrav/exam-grader/internal/metrics"
	"github.com/ahrav/exam-grader/internal/questionbank"
	"github.com/ahrav/exam-grader/internal/worker"
)

// HTTP server timeouts. Writes must outlast a full provider round trip.
const (
	readTimeout       = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	writeSlack        = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "grader:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	m := metrics.NewManager(metrics.WithMetricsEnabled(cfg.LLM.Observability.MetricsEnabled))

	svc, err := worker.InitializeGrader(&cfg.LLM, logger, m)
	if err != nil {
		return err
	}

	var bank questionbank.Bank
	if cfg.QuestionBank != "" {
		static, err := questionbank.Load(cfg.QuestionBank)
		if err != nil {
			return fmt.Errorf("load question bank: %w", err)
		}
		logger.Info("question bank loaded",
			"path", cfg.QuestionBank,
			"questions", len(static.Questions()),
			"headings", len(static.Headings()))
		bank = static
	}

	server := api.NewServer(svc, api.Options{
		Bank:           bank,
		Logger:         logger,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.RequestTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
