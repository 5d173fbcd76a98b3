package resilience

import (
	"context"
	"time"
)

// FromRetryConfig builds a RetryConfig from config values. Non-positive
// values keep the defaults; a negative jitter keeps the default jitter.
func FromRetryConfig(maxAttempts, initialBackoffMs, maxBackoffMs int, multiplier, jitterFraction float64) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	if multiplier > 0 {
		cfg.Multiplier = multiplier
	}
	if jitterFraction >= 0 {
		cfg.JitterFraction = jitterFraction
	}
	return cfg
}

// FromCircuitConfig builds a CircuitBreakerConfig from config values.
func FromCircuitConfig(failureThreshold, resetTimeoutSecs int) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return cfg
}

// Policy combines a retry policy with an optional breaker. Each attempt goes
// through the breaker, so an open circuit ends the retry loop at once.
type Policy struct {
	Retry   RetryConfig
	Breaker *CircuitBreaker
}

// Run executes fn under p.
func Run[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	if p.Breaker == nil {
		return DoVal(ctx, p.Retry, fn)
	}
	return DoVal(ctx, p.Retry, func(ctx context.Context) (T, error) {
		return ExecuteVal(ctx, p.Breaker, fn)
	})
}
