package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFail = errors.New("fail")

func failN(cb *CircuitBreaker, n int) {
	for range n {
		_ = cb.Execute(context.Background(), func(_ context.Context) error { return errFail })
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})

	failN(cb, 2)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 2, cb.Failures())

	failN(cb, 1)
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), func(_ context.Context) error {
		t.Error("should not be called when circuit is open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})
	failN(cb, 2)
	require.NoError(t, cb.Execute(context.Background(), func(_ context.Context) error { return nil }))
	assert.Zero(t, cb.Failures())
}

func TestCircuitBreaker_HalfOpenTrial(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: 100 * time.Millisecond})
	cb.nowFunc = func() time.Time { return now }

	failN(cb, 2)
	require.Equal(t, CircuitOpen, cb.State())

	cb.nowFunc = func() time.Time { return now.Add(200 * time.Millisecond) }
	assert.Equal(t, CircuitHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), func(_ context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: 100 * time.Millisecond})
	cb.nowFunc = func() time.Time { return now }
	failN(cb, 2)

	later := now.Add(200 * time.Millisecond)
	cb.nowFunc = func() time.Time { return later }
	failN(cb, 1)

	assert.Equal(t, CircuitOpen, cb.State())
	assert.Equal(t, 3, cb.Failures())
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions [][2]CircuitState
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, [2]CircuitState{from, to})
		},
	})

	failN(cb, 2)
	cb.Reset()
	cb.Reset()

	assert.Equal(t, [][2]CircuitState{
		{CircuitClosed, CircuitOpen},
		{CircuitOpen, CircuitClosed},
	}, transitions)
	assert.NoError(t, cb.Execute(context.Background(), func(_ context.Context) error { return nil }))
}

func TestCircuitBreaker_ShouldTrip(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
		ShouldTrip:       IsTransient,
	})

	for range 5 {
		_ = cb.Execute(context.Background(), func(_ context.Context) error {
			return errors.New("invalid request")
		})
	}
	assert.Equal(t, CircuitClosed, cb.State())

	for range 2 {
		_ = cb.Execute(context.Background(), func(_ context.Context) error {
			return NewTransientError(errFail, 503)
		})
	}
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitBreaker_CancellationDoesNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return context.Canceled })
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 100, ResetTimeout: time.Minute})

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cb.Execute(context.Background(), func(_ context.Context) error {
				if i%2 == 0 {
					return errFail
				}
				return nil
			})
		}()
	}
	wg.Wait()
}

func TestExecuteVal(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})

	val, err := ExecuteVal(context.Background(), cb, func(_ context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	failN(cb, 1)
	val, err = ExecuteVal(context.Background(), cb, func(_ context.Context) (int, error) { return 42, nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, val)
}

func TestRun_OpenCircuitStopsRetries(t *testing.T) {
	p := Policy{
		Retry:   fastRetry(5),
		Breaker: NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour}),
	}

	var calls int
	_, err := Run(context.Background(), p, func(_ context.Context) (string, error) {
		calls++
		return "", NewTransientError(errFail, 503)
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
}

func TestRun_WithoutBreaker(t *testing.T) {
	var calls int
	out, err := Run(context.Background(), Policy{Retry: fastRetry(3)}, func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError(errFail, 429)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestFromCircuitConfig(t *testing.T) {
	cfg := FromCircuitConfig(3, 10)
	assert.Equal(t, 3, cfg.FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.ResetTimeout)

	def := FromCircuitConfig(0, 0)
	assert.Equal(t, DefaultCircuitBreakerConfig().FailureThreshold, def.FailureThreshold)
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(99).String())
}
