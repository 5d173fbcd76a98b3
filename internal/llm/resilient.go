package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/finchat/internal/metrics"
	"github.com/sells-group/finchat/internal/resilience"
)

// Resilient decorates a Generator with a token-bucket limiter, per-attempt
// timeouts, retries on transient errors and a circuit breaker. It also
// records metrics for every call. Safe for concurrent use.
type Resilient struct {
	provider string
	next     Generator
	limiter  *rate.Limiter
	timeout  time.Duration
	policy   resilience.Policy
}

// ResilientOption configures a Resilient generator.
type ResilientOption func(*Resilient)

// WithRateLimit allows rps calls per second with the given burst. rps <= 0
// disables limiting.
func WithRateLimit(rps float64, burst int) ResilientOption {
	return func(r *Resilient) {
		if rps <= 0 {
			r.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithAttemptTimeout bounds each attempt. d <= 0 leaves attempts unbounded.
func WithAttemptTimeout(d time.Duration) ResilientOption {
	return func(r *Resilient) { r.timeout = d }
}

// WithPolicy sets the retry policy and breaker.
func WithPolicy(p resilience.Policy) ResilientOption {
	return func(r *Resilient) { r.policy = p }
}

// NewResilient wraps next. Without options it retries with the default
// policy and has no breaker or limiter.
func NewResilient(provider string, next Generator, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		provider: provider,
		next:     next,
		policy:   resilience.Policy{Retry: resilience.DefaultRetryConfig()},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Generate calls the wrapped generator under the configured policy.
func (r *Resilient) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	policy := r.policy
	policy.Retry.OnRetry = resilience.RetryLogger(r.provider, string(req.Phase))

	resp, err := resilience.Run(ctx, policy, func(ctx context.Context) (*Response, error) {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "llm: rate limit wait")
			}
		}
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		return r.next.Generate(ctx, req)
	})
	elapsed := time.Since(start)

	if err != nil {
		status := metrics.StatusError
		if errors.Is(err, resilience.ErrCircuitOpen) {
			status = metrics.StatusCircuitOpen
		}
		metrics.ObserveGeneration(r.provider, string(req.Phase), status, elapsed)
		zap.L().Warn("generation failed",
			zap.String("provider", r.provider),
			zap.String("phase", string(req.Phase)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ObserveGeneration(r.provider, string(req.Phase), metrics.StatusOK, elapsed)
	metrics.AddTokens(r.provider, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	zap.L().Debug("generation complete",
		zap.String("provider", r.provider),
		zap.String("phase", string(req.Phase)),
		zap.String("model", resp.Model),
		zap.Duration("elapsed", elapsed),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return resp, nil
}
