package domain

import (
	"testing"
	"time"
)

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    Trend
	}{
		{name: "empty", want: TrendFlat},
		{name: "first sample only", samples: []float64{5}, want: TrendFlat},
		{name: "up", samples: []float64{1, 2}, want: TrendUp},
		{name: "down", samples: []float64{2, 1}, want: TrendDown},
		{name: "equal", samples: []float64{3, 3}, want: TrendFlat},
		{name: "uses last two", samples: []float64{9, 1, 2}, want: TrendUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendOf(tt.samples); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConnectionState_Label(t *testing.T) {
	now := time.Unix(0, 0)
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{ConnectionState{Phase: PhaseConnecting}, "connecting"},
		{Connected(now), "connected"},
		{Reconnecting(now, 2, 1500*time.Millisecond, nil), "reconnecting #2 in 1.5s"},
		{Degraded(now, 3, nil), "degraded (3 failures)"},
		{ConnectionState{Phase: PhaseFailed}, "failed"},
	}
	for _, tt := range tests {
		if got := tt.state.Label(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
