package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTest         = errors.New("test error")
	errRetryable    = errors.New("retryable error")
	errNonRetryable = errors.New("non-retryable error")
)

func fastConfig() RetryConfig {
	config := DefaultRetryConfig()
	config.InitialBackoff = time.Millisecond
	config.MaxBackoff = 5 * time.Millisecond
	config.EnableJitter = false
	return config
}

// ========================================
// Retry
// ========================================

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	attemptCount := 0
	result, err := Retry(context.Background(), DefaultRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, attemptCount)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	attemptCount := 0
	result, err := Retry(context.Background(), fastConfig(), func(ctx context.Context) (interface{}, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errTest
		}
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, attemptCount)
}

func TestRetry_FailureAfterMaxAttempts(t *testing.T) {
	attemptCount := 0
	result, err := Retry(context.Background(), fastConfig(), func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, errTest
	})

	assert.Equal(t, errTest, err)
	assert.Nil(t, result)
	assert.Equal(t, 3, attemptCount)
}

func TestRetry_ZeroMaxAttempts(t *testing.T) {
	config := fastConfig()
	config.MaxAttempts = 0
	attemptCount := 0

	_, err := Retry(context.Background(), config, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attemptCount, "should attempt at least once even with MaxAttempts=0")
}

func TestRetry_ContextTimeoutStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	config := fastConfig()
	config.InitialBackoff = 100 * time.Millisecond
	config.MaxBackoff = time.Second
	config.MaxAttempts = 5
	attemptCount := 0

	_, err := Retry(ctx, config, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, errTest
	})

	assert.Equal(t, errTest, err)
	assert.Equal(t, 1, attemptCount)
}

func TestRetry_NotRetried(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		configure func(*RetryConfig)
	}{
		{name: "not in retryable list", err: errNonRetryable, configure: func(c *RetryConfig) { c.RetryableErrors = []error{errRetryable} }},
		{name: "circuit open", err: ErrCircuitOpen},
		{name: "context canceled", err: context.Canceled},
		{name: "custom checker refuses", err: errTest, configure: func(c *RetryConfig) {
			c.RetryableChecker = func(error) bool { return false }
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := fastConfig()
			if tt.configure != nil {
				tt.configure(&config)
			}
			attemptCount := 0

			_, err := Retry(context.Background(), config, func(ctx context.Context) (interface{}, error) {
				attemptCount++
				return nil, tt.err
			})

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, attemptCount)
		})
	}
}

func TestRetry_RetryableErrorList(t *testing.T) {
	config := fastConfig()
	config.RetryableErrors = []error{errRetryable}
	attemptCount := 0

	_, err := Retry(context.Background(), config, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, fmt.Errorf("wrapped: %w", errRetryable)
	})

	assert.Error(t, err)
	assert.Equal(t, config.MaxAttempts, attemptCount)
}

// ========================================
// Backoff
// ========================================

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	config := RetryConfig{
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, calculateBackoff(tt.attempt, config))
		})
	}
}

func TestAddJitter(t *testing.T) {
	duration := 10 * time.Second
	for i := 0; i < 10; i++ {
		jittered := addJitter(duration)
		assert.GreaterOrEqual(t, jittered, time.Duration(0))
		assert.LessOrEqual(t, jittered, duration)
	}
	assert.Equal(t, time.Duration(0), addJitter(0))
}

func TestStoreRetryConfig(t *testing.T) {
	config := StoreRetryConfig()
	assert.Equal(t, 3, config.MaxAttempts)
	assert.Less(t, config.MaxBackoff, time.Second)
}

// ========================================
// Circuit breaker
// ========================================

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		Name:             "test-open",
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}, nil)

	failing := func(ctx context.Context) (interface{}, error) { return nil, errTest }

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(context.Background(), failing)
		assert.Equal(t, errTest, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	called := false
	_, err := cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_FallbackUsedWhenOpen(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test-fallback", Timeout: time.Minute, FailureThreshold: 1},
		func(ctx context.Context, err error) (interface{}, error) { return "cached", nil })

	_, _ = cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return nil, errTest })

	result, err := cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return "live", nil })
	require.NoError(t, err)
	assert.Equal(t, "cached", result)
}

func TestCircuitBreaker_GeneratesName(t *testing.T) {
	cb := NewCircuitBreaker(Settings{}, nil)
	assert.Contains(t, cb.Name(), "breaker-")
}

func TestRetryWithBreaker(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test-retry", Timeout: time.Minute, FailureThreshold: 5}, nil)

	attemptCount := 0
	result, err := RetryWithBreaker(context.Background(), fastConfig(), cb, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		if attemptCount < 2 {
			return nil, errTest
		}
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 2, attemptCount)
}

func TestBuildSettings_Defaults(t *testing.T) {
	s := BuildSettings("store", 0, 0, 0, 0)
	assert.Equal(t, time.Minute, s.Interval)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, uint32(5), s.FailureThreshold)
	assert.Equal(t, uint32(1), s.SuccessThreshold)
}

func TestCircuitBreaker_CountsOutcomes(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test-outcomes", Timeout: time.Minute, FailureThreshold: 1}, nil)

	_, _ = cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return "ok", nil })
	_, _ = cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return nil, errTest })
	_, _ = cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return "ok", nil })

	assert.Equal(t, float64(1), testutil.ToFloat64(breakerCalls.WithLabelValues("test-outcomes", outcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(breakerCalls.WithLabelValues("test-outcomes", outcomeFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(breakerCalls.WithLabelValues("test-outcomes", outcomeRejected)))
	assert.Equal(t, float64(1), testutil.ToFloat64(breakerState.WithLabelValues("test-outcomes")))
}
