// Package retrylimit combines an adaptive rate limiter with retrying for
// clients of flaky HTTP services. The limit rises while requests succeed and
// collapses when the service pushes back.
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter manages a request rate that adjusts from outcomes:
// Success nudges it up, RateLimited cuts it down. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter builds a limiter starting at initial requests per
// second, bounded by [min, max]. stepUp is added on success, stepDown is the
// multiplier applied on failure (0.5 halves the rate).
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < min {
		initial = min
	}
	burst := int(initial)
	if burst < 1 {
		burst = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burst),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate, unless an error was seen in the last 10s.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited cuts the rate after the service pushed back.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(limit rate.Limit) {
	if limit > a.maxLimit {
		limit = a.maxLimit
	}
	if limit < a.minLimit {
		limit = a.minLimit
	}
	if limit == a.limiter.Limit() {
		return
	}
	a.limiter.SetLimit(limit)
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	a.limiter.SetBurst(burst)
}

// HTTPError is implemented by errors carrying an HTTP status code; it lets
// the retry loop distinguish pushback (429, 5xx) from real failures.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError wraps errors that must stop retrying immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// RetryConfig tunes WithRetryConfig.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultRetryConfig returns the configuration WithRetry uses.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetry runs fn with exponential backoff and the default configuration.
// It stops when fn succeeds, fn returns a FatalError, the context ends, or
// attempts run out. A nil limiter disables rate limiting.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter) error {
	return WithRetryConfig(ctx, fn, lim, DefaultRetryConfig())
}

// WithRetryConfig runs fn under a custom retry configuration.
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg RetryConfig) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		lastErr = err

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if pushback(err) && lim != nil {
			lim.RateLimited()
			log.Printf("[Retry] Pushback on attempt %d, limit now %.2f rps", attempt, lim.CurrentLimit())
		}

		next := delay
		if cfg.Jitter && delay > 0 {
			next = delay + time.Duration(rand.Int63n(int64(delay/4)+1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(next):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// pushback reports whether the service asked us to slow down.
func pushback(err error) bool {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	code := httpErr.StatusCode()
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}
