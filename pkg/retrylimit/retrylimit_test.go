package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type statusError struct {
	code int
}

func (e *statusError) Error() string   { return http.StatusText(e.code) }
func (e *statusError) StatusCode() int { return e.code }

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetryConfig_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, fastConfig(5))
	if err != nil {
		t.Fatalf("WithRetryConfig = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryConfig_GivesUp(t *testing.T) {
	calls := 0
	sentinel := errors.New("down")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return sentinel
	}, nil, fastConfig(3))
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapped sentinel", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryConfig_FatalStopsImmediately(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return &FatalError{Err: errors.New("no such page")}
	}, nil, fastConfig(5))

	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Errorf("err = %v, want FatalError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetryConfig_PushbackLowersLimit(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 20, 1, 0.5)
	calls := 0
	_ = WithRetryConfig(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &statusError{code: http.StatusTooManyRequests}
		}
		return nil
	}, lim, fastConfig(5))

	if got := lim.CurrentLimit(); got != 4 {
		t.Errorf("limit after pushback = %v, want 4", got)
	}
}

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 1, 3, 1, 0.5)

	lim.Success()
	lim.Success()
	lim.Success()
	if got := lim.CurrentLimit(); got != 3 {
		t.Errorf("limit = %v, want capped at 3", got)
	}

	for i := 0; i < 10; i++ {
		lim.RateLimited()
	}
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("limit = %v, want floored at 1", got)
	}
}

func TestAdaptiveLimiter_NoRaiseRightAfterError(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 20, 1, 0.5)
	lim.RateLimited()
	before := lim.CurrentLimit()
	lim.Success()
	if got := lim.CurrentLimit(); got != before {
		t.Errorf("limit raised to %v right after an error", got)
	}
}

func TestWithRetryConfig_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetryConfig(ctx, func() error {
		return errors.New("transient")
	}, nil, fastConfig(5))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
