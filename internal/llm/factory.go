package llm

import (
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/config"
	"github.com/sells-group/finchat/internal/metrics"
	"github.com/sells-group/finchat/internal/resilience"
	"github.com/sells-group/finchat/pkg/anthropic"
	"github.com/sells-group/finchat/pkg/openai"
)

// New builds the configured provider wrapped in a Resilient generator.
func New(cfg *config.Config) (Generator, error) {
	var base Generator
	provider := cfg.LLM.Provider

	switch provider {
	case config.ProviderAnthropic:
		var opts []option.RequestOption
		if cfg.Anthropic.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.Anthropic.BaseURL))
		}
		client := anthropic.NewClient(cfg.Anthropic.Key, opts...)
		base = NewAnthropic(client, cfg.Anthropic.Model, int64(cfg.LLM.MaxTokens), cfg.LLM.Temperature)
	case config.ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(cfg.OpenAI.Model)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.LLM.TimeoutSecs > 0 {
			opts = append(opts, openai.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
			}))
		}
		client := openai.NewClient(cfg.OpenAI.Key, opts...)
		base = NewOpenAI(client, cfg.OpenAI.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", provider)
	}

	r := cfg.LLM.Retry
	breakerCfg := resilience.FromCircuitConfig(cfg.LLM.Circuit.FailureThreshold, cfg.LLM.Circuit.ResetTimeoutSecs)
	breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
		metrics.CircuitState.WithLabelValues(provider).Set(float64(to))
		zap.L().Warn("circuit state change",
			zap.String("provider", provider),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}

	return NewResilient(provider, base,
		WithRateLimit(cfg.LLM.RateLimit, cfg.LLM.Burst),
		WithAttemptTimeout(time.Duration(cfg.LLM.TimeoutSecs)*time.Second),
		WithPolicy(resilience.Policy{
			Retry:   resilience.FromRetryConfig(r.MaxAttempts, r.InitialBackoffMs, r.MaxBackoffMs, r.Multiplier, r.JitterFraction),
			Breaker: resilience.NewCircuitBreaker(breakerCfg),
		}),
	), nil
}
