package providers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/exam-grader/internal/domain"
	"github.com/ahrav/exam-grader/internal/llm/configuration"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// stubAdapter answers every Send with a fixed reply.
type stubAdapter struct {
	name  domain.Provider
	reply string
	err   error
}

func (s *stubAdapter) Send(_ context.Context, _ Call) (string, error) { return s.reply, s.err }
func (s *stubAdapter) Model(requested string) string                 { return resolveModel(requested, "stub-model") }
func (s *stubAdapter) Name() domain.Provider                          { return s.name }

func TestNewRouter(t *testing.T) {
	tests := []struct {
		name     string
		config   *configuration.Config
		wantErr  error
		validate func(t *testing.T, r Router)
	}{
		{
			name:   "nil_config_uses_defaults",
			config: nil,
			validate: func(t *testing.T, r Router) {
				for _, p := range domain.Providers() {
					assert.Equal(t, p, r.Pick(string(p)).Name())
				}
			},
		},
		{
			name: "partial_provider_config_merged",
			config: &configuration.Config{
				Providers: map[string]configuration.ProviderConfig{
					"anthropic": {DefaultModel: "claude-3-haiku-20240307"},
				},
			},
			validate: func(t *testing.T, r Router) {
				a := r.Pick("anthropic")
				assert.Equal(t, "claude-3-haiku-20240307", a.Model(""))
				assert.Equal(t, configuration.DefaultOpenAIModel, r.Pick("openai").Model(""))
			},
		},
		{
			name: "unknown_provider_key_rejected",
			config: &configuration.Config{
				Providers: map[string]configuration.ProviderConfig{
					"mistral": {},
				},
			},
			wantErr: configuration.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRouter(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, r)
			tt.validate(t, r)
		})
	}
}

func TestRouter_Pick(t *testing.T) {
	r, err := NewRouter(configuration.DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		selector string
		want     domain.Provider
	}{
		{selector: "openai", want: domain.ProviderOpenAI},
		{selector: "google", want: domain.ProviderGoogle},
		{selector: "gemini", want: domain.ProviderGoogle},
		{selector: "anthropic", want: domain.ProviderAnthropic},
		{selector: "Claude", want: domain.ProviderAnthropic},
		{selector: "", want: domain.ProviderOpenAI},
		{selector: "mistral", want: domain.ProviderOpenAI},
	}

	for _, tt := range tests {
		t.Run("selector_"+tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Pick(tt.selector).Name())
		})
	}
}

func TestNewRouterFromAdapters(t *testing.T) {
	t.Run("default_required", func(t *testing.T) {
		_, err := NewRouterFromAdapters(map[domain.Provider]Adapter{
			domain.ProviderGoogle: &stubAdapter{name: domain.ProviderGoogle},
		})
		require.ErrorIs(t, err, llmerrors.ErrUnknownProvider)
	})

	t.Run("unregistered_provider_falls_back_to_default", func(t *testing.T) {
		r, err := NewRouterFromAdapters(map[domain.Provider]Adapter{
			domain.ProviderOpenAI: &stubAdapter{name: domain.ProviderOpenAI},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProviderOpenAI, r.Pick("anthropic").Name())
	})

	t.Run("caller_map_copied", func(t *testing.T) {
		adapters := map[domain.Provider]Adapter{
			domain.ProviderOpenAI: &stubAdapter{name: domain.ProviderOpenAI},
		}
		r, err := NewRouterFromAdapters(adapters)
		require.NoError(t, err)

		adapters[domain.ProviderGoogle] = &stubAdapter{name: domain.ProviderGoogle}
		assert.Equal(t, domain.ProviderOpenAI, r.Pick("google").Name())
	})
}

func TestInstrumented(t *testing.T) {
	r, err := NewRouterFromAdapters(map[domain.Provider]Adapter{
		domain.ProviderOpenAI: &stubAdapter{name: domain.ProviderOpenAI, err: errors.New("boom")},
	})
	require.NoError(t, err)

	metrics := newRecordingMetrics()
	wrapped := Instrumented(r, nil, metrics)

	a := wrapped.Pick("openai")
	_, isInstrumented := a.(*instrumented)
	assert.True(t, isInstrumented)

	_, err = a.Send(context.Background(), Call{})
	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, metrics.count(MetricRequestsErrors))
}

func TestRouter_Concurrency(t *testing.T) {
	r, err := NewRouter(configuration.DefaultConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adapter := r.Pick("google")
			assert.NotNil(t, adapter)
			assert.Equal(t, domain.ProviderGoogle, adapter.Name())
		}()
	}
	wg.Wait()
}
