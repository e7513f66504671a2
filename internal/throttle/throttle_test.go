package throttle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig keeps retries and pacing in the millisecond range for tests.
func fastConfig() Config {
	return Config{
		MinInterval: time.Millisecond,
		MaxRetries:  6,
		BackoffBase: time.Millisecond,
		MaxBackoff:  4 * time.Millisecond,
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", errors.New("unexpected status code: 429"), true},
		{"too many requests", errors.New("Too Many Requests"), true},
		{"rate limit spaced", errors.New("openai: Rate Limit reached for gpt-4o"), true},
		{"rate limit underscore", errors.New("error code rate_limit_exceeded"), true},
		{"grpc resource exhausted", errors.New("rpc error: code = RESOURCE_EXHAUSTED desc = ..."), true},
		{"quota", errors.New("Quota exceeded for quota metric"), true},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"plain failure", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	l := NewLimiter(Config{})
	assert.Equal(t, DefaultMinInterval, l.cfg.MinInterval)
	assert.Equal(t, DefaultMaxRetries, l.cfg.MaxRetries)
	assert.Equal(t, DefaultBackoffBase, l.cfg.BackoffBase)
	assert.Equal(t, DefaultMaxBackoff, l.cfg.MaxBackoff)
}

func TestInvokeReturnsResult(t *testing.T) {
	l := NewLimiter(fastConfig())

	result, err := Invoke(context.Background(), l, "test", func() (string, error) {
		return "answer", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "answer", result)
}

func TestInvokeRetriesRateLimitThenSucceeds(t *testing.T) {
	l := NewLimiter(fastConfig())

	const failures = 3
	attempts := 0
	result, err := Invoke(context.Background(), l, "test", func() (int, error) {
		attempts++
		if attempts <= failures {
			return 0, errors.New("429 too many requests")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, failures+1, attempts)
}

func TestInvokeExhaustsRetries(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2
	l := NewLimiter(cfg)

	attempts := 0
	_, err := Invoke(context.Background(), l, "test", func() (string, error) {
		attempts++
		return "", fmt.Errorf("attempt %d: rate limit reached", attempts)
	})

	require.Error(t, err)
	// The last error is propagated unchanged.
	assert.Contains(t, err.Error(), "attempt 3")
	assert.Equal(t, cfg.MaxRetries+1, attempts)
}

func TestInvokeDoesNotRetryOtherErrors(t *testing.T) {
	l := NewLimiter(fastConfig())

	permErr := errors.New("invalid api key")
	attempts := 0
	_, err := Invoke(context.Background(), l, "test", func() (string, error) {
		attempts++
		return "", permErr
	})

	require.ErrorIs(t, err, permErr)
	assert.Equal(t, 1, attempts)
}

func TestInvokePacesConsecutiveCalls(t *testing.T) {
	cfg := fastConfig()
	cfg.MinInterval = 30 * time.Millisecond
	l := NewLimiter(cfg)

	const calls = 3
	start := time.Now()
	for i := 0; i < calls; i++ {
		_, err := Invoke(context.Background(), l, "test", func() (struct{}, error) {
			return struct{}{}, nil
		})
		require.NoError(t, err)
	}

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, (calls-1)*cfg.MinInterval,
		"N calls must span at least (N-1) pacing intervals")
}

func TestInvokeCancelledContext(t *testing.T) {
	cfg := fastConfig()
	cfg.MinInterval = time.Minute
	l := NewLimiter(cfg)

	// First call reserves immediately; the second must wait out the interval
	// and should abort when the context is cancelled instead.
	_, err := Invoke(context.Background(), l, "test", func() (struct{}, error) {
		return struct{}{}, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	called := false
	_, err = Invoke(ctx, l, "test", func() (struct{}, error) {
		called = true
		return struct{}{}, nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}

func TestBackoffDelayBounds(t *testing.T) {
	l := NewLimiter(Config{
		MinInterval: time.Millisecond,
		MaxRetries:  6,
		BackoffBase: 2 * time.Second,
		MaxBackoff:  45 * time.Second,
	})

	for attempt := 0; attempt <= 10; attempt++ {
		delay := l.backoffDelay(attempt)

		base := l.cfg.BackoffBase << attempt
		if base > l.cfg.MaxBackoff || base <= 0 {
			base = l.cfg.MaxBackoff
		}
		jitterCap := base / 4
		if jitterCap > maxJitter {
			jitterCap = maxJitter
		}

		assert.GreaterOrEqual(t, delay, base, "attempt %d", attempt)
		assert.Less(t, delay, base+jitterCap+time.Millisecond, "attempt %d", attempt)
	}
}

func TestBackoffDelayGrowsExponentially(t *testing.T) {
	l := NewLimiter(Config{
		MinInterval: time.Millisecond,
		MaxRetries:  6,
		BackoffBase: time.Second,
		MaxBackoff:  45 * time.Second,
	})

	// With jitter capped at delay/4 (at most 1s), consecutive delays
	// cannot overlap while the exponential curve is below the ceiling.
	d0 := l.backoffDelay(0)
	d2 := l.backoffDelay(2)
	assert.Less(t, d0, d2)
}
