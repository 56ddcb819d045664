// Package config defines process configuration for the grader binaries and
// loads it from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ahrav/exam-grader/internal/llm/configuration"
)

// ErrInvalid wraps every validation failure reported by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config contains process configuration shared by the HTTP server and the
// Temporal worker.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RequestTimeout bounds a single grading request end to end.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`

	// QuestionBank is the path of the YAML question bank. Empty disables
	// question lookup by ID.
	QuestionBank string `koanf:"question_bank"`

	// LLM configures the provider adapters.
	LLM configuration.Config `koanf:"llm"`

	// Temporal configures the worker binary.
	Temporal TemporalConfig `koanf:"temporal"`
}

// TemporalConfig locates the Temporal frontend and task queue.
type TemporalConfig struct {
	HostPort  string `koanf:"host_port"`
	Namespace string `koanf:"namespace"`
	TaskQueue string `koanf:"task_queue"`
}

// Defaults.
const (
	DefaultAddr              = ":8080"
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultRequestTimeout    = 90 * time.Second
	DefaultTemporalHostPort  = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "exam-grading"
)

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:            DefaultAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		RequestTimeout:  DefaultRequestTimeout,
		CORSOrigins:     []string{"*"},
		LLM:             *configuration.DefaultConfig(),
		Temporal: TemporalConfig{
			HostPort:  DefaultTemporalHostPort,
			Namespace: DefaultTemporalNamespace,
			TaskQueue: DefaultTaskQueue,
		},
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalid)
	}
	if c.ShutdownTimeout < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalid)
	}
	if strings.TrimSpace(c.Temporal.TaskQueue) == "" {
		return fmt.Errorf("%w: temporal.task_queue must not be empty", ErrInvalid)
	}
	if _, err := ParseLevel(c.LLM.Observability.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger builds the process logger from the observability settings.
// Format "text" selects a text handler; anything else is JSON.
func (c *Config) NewLogger() *slog.Logger {
	level, _ := ParseLevel(c.LLM.Observability.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LLM.Observability.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
