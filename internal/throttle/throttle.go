// Package throttle paces and retries remote model invocations.
//
// A Limiter enforces a minimum interval between call reservations and
// retries calls that fail with a transient rate-limit error, using
// exponential backoff with jitter. It is a rate limiter, not a concurrency
// limiter: only the check-and-reserve step is serialized, the call itself
// runs outside the lock, so concurrent callers may have overlapping
// in-flight calls while still being paced to one reservation per interval.
package throttle

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Default pacing and retry parameters.
const (
	DefaultMinInterval = 1 * time.Second
	DefaultMaxRetries  = 6
	DefaultBackoffBase = 2 * time.Second
	DefaultMaxBackoff  = 45 * time.Second

	// maxJitter bounds the random component added to each backoff delay.
	maxJitter = 1 * time.Second
)

// rateLimitSignatures are the substrings that mark an error as a transient
// rate-limit failure. Matching is heuristic by design: the providers we talk
// to surface rate limiting in wire formats we do not control, and the list
// must stay aligned with their observed messages. Structured provider error
// codes would be the eventual replacement where available.
var rateLimitSignatures = []string{
	"429",
	"too many requests",
	"rate limit",
	"rate_limit",
	"resource_exhausted",
	"quota exceeded",
}

// IsRateLimited reports whether err looks like a transient rate-limit error.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// Config holds pacing and retry parameters. Zero values fall back to the
// package defaults.
type Config struct {
	// MinInterval is the minimum time between call reservations.
	MinInterval time.Duration
	// MaxRetries bounds retries beyond the first attempt for rate-limit errors.
	MaxRetries int
	// BackoffBase is the base of the exponential backoff.
	BackoffBase time.Duration
	// MaxBackoff caps a single backoff delay (before jitter).
	MaxBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinInterval <= 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	return c
}

// Limiter owns the shared pacing state: the timestamp of the last
// reservation, guarded by a mutex. One Limiter is shared by every component
// that issues remote calls against the same provider; independent providers
// can each get their own instance.
type Limiter struct {
	cfg Config

	mu   sync.Mutex
	last time.Time
}

// NewLimiter creates a Limiter with the given configuration.
func NewLimiter(cfg Config) *Limiter {
	return &Limiter{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration of the limiter.
func (l *Limiter) Config() Config {
	return l.cfg
}

// reserve blocks until a call slot is available and records the reservation.
// The wait happens while holding the mutex so concurrent callers queue up
// behind it; the reservation is recorded before the remote call executes,
// which keeps pacing deterministic even when calls are slow.
func (l *Limiter) reserve(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.cfg.MinInterval - time.Since(l.last); wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	l.last = time.Now()
	return nil
}

// backoffDelay computes the delay before retry number attempt (0-based):
// exponential growth capped at MaxBackoff, plus uniform jitter bounded by
// min(maxJitter, delay/4).
func (l *Limiter) backoffDelay(attempt int) time.Duration {
	delay := l.cfg.BackoffBase << attempt
	if delay > l.cfg.MaxBackoff || delay <= 0 {
		delay = l.cfg.MaxBackoff
	}
	jitterCap := delay / 4
	if jitterCap > maxJitter {
		jitterCap = maxJitter
	}
	if jitterCap > 0 {
		delay += time.Duration(rand.Int64N(int64(jitterCap)))
	}
	return delay
}

// Invoke runs call through the limiter: it reserves a pacing slot, executes
// the call, and retries rate-limited failures with exponential backoff.
// Non-rate-limit errors propagate unchanged after a single attempt. The
// label identifies the caller in logs.
func Invoke[T any](ctx context.Context, l *Limiter, label string, call func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := l.reserve(ctx); err != nil {
			return zero, err
		}

		result, err := call()
		if err == nil {
			return result, nil
		}

		if !IsRateLimited(err) {
			return zero, err
		}
		if attempt >= l.cfg.MaxRetries {
			slog.Error("rate-limit retries exhausted",
				"context", label,
				"attempts", attempt+1,
				"error", err,
			)
			return zero, err
		}

		delay := l.backoffDelay(attempt)
		slog.Warn("rate limited, backing off",
			"context", label,
			"attempt", attempt+1,
			"delay", delay,
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
