package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

// Predicate determines whether an error should be retried.
type Predicate func(error) bool

// Config controls retry behavior for one-shot operations such as the
// scrape command. Long-lived connections use Backoff instead.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry, when set, is called before each wait with the attempt that
	// just failed and the delay about to be slept.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Do runs op until it succeeds, returns an error shouldRetry rejects, or
// MaxAttempts is used up. Waits between attempts follow the same
// full-jitter curve as Backoff, starting at BaseDelay.
func Do(ctx context.Context, cfg Config, shouldRetry Predicate, op func() error) error {
	attempts := max(cfg.MaxAttempts, 1)
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op()
		if err == nil || attempt >= attempts || !shouldRetry(err) {
			return err
		}

		delay := backoffDelay(cfg.BaseDelay, cfg.MaxDelay, attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		if delay > 0 && !Sleep(ctx, delay) {
			return ctx.Err()
		}
	}
}

// IsRetryable reports whether err is likely transient: an unreachable or
// dropped source, a timeout, or a temporary network error. Parse errors
// and cancellation are final.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, domain.ErrParse):
		return false
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, domain.ErrUnavailable),
		errors.Is(err, domain.ErrDisconnected):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return jitter(ceiling(base, max, attempt-1), rand.Int63n)
}

// Sleep waits for delay or until ctx is done. It reports whether the full
// delay elapsed.
func Sleep(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
