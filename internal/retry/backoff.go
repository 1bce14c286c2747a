package retry

import (
	"math"
	"math/rand"
	"time"
)

// Default reconnect policy for the block event stream.
const (
	DefaultBackoffBase = 500 * time.Millisecond
	DefaultBackoffMax  = 30 * time.Second
)

// Backoff is a full-jitter exponential backoff.
//
// The n-th delay (counting from zero since the last Reset) is drawn
// uniformly from [0, min(Max, Base*2^n)]. Backoff is not safe for
// concurrent use; each connection owns one.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	attempt int
	int63n  func(int64) int64
}

// NewBackoff returns a Backoff with the given base and cap. Non-positive
// values fall back to the defaults.
func NewBackoff(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if max <= 0 {
		max = DefaultBackoffMax
	}
	if max < base {
		max = base
	}
	return &Backoff{Base: base, Max: max}
}

// Attempt returns how many delays have been handed out since the last Reset.
func (b *Backoff) Attempt() int { return b.attempt }

// Ceiling returns the upper bound of the delay for the given attempt.
func (b *Backoff) Ceiling(attempt int) time.Duration {
	return ceiling(b.Base, b.Max, attempt)
}

// Next returns the next jittered delay and advances the attempt counter.
func (b *Backoff) Next() time.Duration {
	int63n := b.int63n
	if int63n == nil {
		int63n = rand.Int63n
	}
	d := jitter(b.Ceiling(b.attempt), int63n)
	b.attempt++
	return d
}

// Reset returns the policy to its base delay.
func (b *Backoff) Reset() { b.attempt = 0 }

// ceiling computes min(max, base<<attempt) without overflowing.
func ceiling(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	d := base
	for range attempt {
		if max > 0 && d >= max {
			break
		}
		if d > math.MaxInt64/2 {
			break
		}
		d <<= 1
	}
	if max > 0 && d > max {
		d = max
	}
	return d
}

func jitter(limit time.Duration, int63n func(int64) int64) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(int63n(int64(limit) + 1))
}
