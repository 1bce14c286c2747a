package retry

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBackoff_CeilingDoublesUntilCap(t *testing.T) {
	b := NewBackoff(500*time.Millisecond, 30*time.Second)

	var got []time.Duration
	for attempt := range 9 {
		got = append(got, b.Ceiling(attempt))
	}

	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ceilings mismatch (-want +got):\n%s", diff)
	}
}

func TestBackoff_CeilingMonotonicAndBounded(t *testing.T) {
	cases := []struct {
		base, max time.Duration
	}{
		{time.Millisecond, time.Second},
		{500 * time.Millisecond, 30 * time.Second},
		{3 * time.Second, 7 * time.Second},
		{time.Hour, time.Hour},
	}

	for _, tc := range cases {
		b := NewBackoff(tc.base, tc.max)
		prev := time.Duration(0)
		for attempt := range 200 {
			c := b.Ceiling(attempt)
			if c < prev {
				t.Fatalf("base=%v max=%v: ceiling decreased at attempt %d: %v < %v", tc.base, tc.max, attempt, c, prev)
			}
			if c > tc.max {
				t.Fatalf("base=%v max=%v: ceiling %v exceeds cap at attempt %d", tc.base, tc.max, c, attempt)
			}
			prev = c
		}
	}
}

func TestBackoff_NextWithinCeiling(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 2*time.Second)
	for attempt := range 50 {
		limit := b.Ceiling(attempt)
		d := b.Next()
		if d < 0 || d > limit {
			t.Fatalf("attempt %d: delay %v outside [0, %v]", attempt, d, limit)
		}
	}
	if b.Attempt() != 50 {
		t.Fatalf("expected 50 attempts, got %d", b.Attempt())
	}
}

func TestBackoff_NextUsesFullJitterRange(t *testing.T) {
	b := NewBackoff(time.Second, time.Minute)
	var seen []int64
	b.int63n = func(n int64) int64 {
		seen = append(seen, n)
		return n - 1
	}

	first := b.Next()
	second := b.Next()

	if diff := cmp.Diff([]int64{int64(time.Second) + 1, int64(2*time.Second) + 1}, seen); diff != "" {
		t.Fatalf("jitter bounds mismatch (-want +got):\n%s", diff)
	}
	if first != time.Second || second != 2*time.Second {
		t.Fatalf("expected delays at ceiling, got %v and %v", first, second)
	}
}

func TestBackoff_ResetReturnsToBase(t *testing.T) {
	b := NewBackoff(500*time.Millisecond, 30*time.Second)
	b.int63n = func(n int64) int64 { return n - 1 }

	for range 6 {
		b.Next()
	}
	b.Reset()

	if b.Attempt() != 0 {
		t.Fatalf("expected attempt 0 after reset, got %d", b.Attempt())
	}
	if d := b.Next(); d != 500*time.Millisecond {
		t.Fatalf("expected first delay after reset at base, got %v", d)
	}
}

func TestNewBackoff_Defaults(t *testing.T) {
	b := NewBackoff(0, 0)
	if b.Base != DefaultBackoffBase || b.Max != DefaultBackoffMax {
		t.Fatalf("expected defaults, got base=%v max=%v", b.Base, b.Max)
	}

	b = NewBackoff(10*time.Second, time.Second)
	if b.Max != 10*time.Second {
		t.Fatalf("expected cap raised to base, got %v", b.Max)
	}
}

func TestCeiling_NoOverflow(t *testing.T) {
	if got := ceiling(time.Second, 0, 1000); got <= 0 {
		t.Fatalf("expected positive ceiling without cap, got %v", got)
	}
}
