package components

import (
	"strings"
	"testing"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/aggregator"
	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/x/ansi"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{200 * time.Millisecond, "now"},
		{3 * time.Second, "3s"},
		{90 * time.Second, "1m"},
		{2*time.Hour + time.Minute, "2h"},
		{49 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := FormatAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatAge(-%s) = %q, want %q", tt.ago, got, tt.want)
		}
	}
	if got := FormatAge(time.Time{}, now); got != "-" {
		t.Errorf("FormatAge(zero) = %q, want %q", got, "-")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m"},
		{3*time.Hour + 7*time.Minute, "3h 7m"},
		{50*time.Hour + 30*time.Minute, "2d 2h 30m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPeerLevel(t *testing.T) {
	tests := []struct {
		peers uint64
		want  styles.Level
	}{
		{0, styles.LevelBad},
		{1, styles.LevelWarn},
		{10, styles.LevelWarn},
		{11, styles.LevelGood},
		{200, styles.LevelGood},
	}
	for _, tt := range tests {
		if got := PeerLevel(tt.peers); got != tt.want {
			t.Errorf("PeerLevel(%d) = %d, want %d", tt.peers, got, tt.want)
		}
	}
}

func TestBlockTable(t *testing.T) {
	s := styles.For(0)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if got := ansi.Strip(BlockTable(s, nil, 80, now)); !strings.Contains(got, "waiting for blocks") {
		t.Errorf("empty table = %q, want placeholder", got)
	}

	blocks := []domain.BlockEvent{
		{Number: 1234567, Hash: "0x" + strings.Repeat("ab", 32), TxCount: 42, GasUsed: 50, GasLimit: 100, Timestamp: now.Add(-2 * time.Second)},
		{Number: 1234566, Hash: "0xdead", ReceivedAt: now.Add(-5 * time.Second)},
	}
	out := ansi.Strip(BlockTable(s, blocks, 80, now))
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	for _, want := range []string{"1,234,567", "42", "50.0%", "2s", "…"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
	if !strings.Contains(lines[2], "5s") {
		t.Errorf("row %q should fall back to arrival time", lines[2])
	}
}

func TestFooter_SkipsDisabled(t *testing.T) {
	s := styles.For(0)
	quit := key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	hidden := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"), key.WithDisabled())

	out := ansi.Strip(Footer(s, 60, []key.Binding{quit, hidden}))
	if !strings.Contains(out, "q quit") {
		t.Errorf("footer %q missing quit binding", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("footer %q contains a disabled binding", out)
	}
	if got := Footer(s, 5, []key.Binding{quit}); got != "" {
		t.Errorf("narrow footer = %q, want empty", got)
	}
}

func TestMetricsChart_TooFewPoints(t *testing.T) {
	s := styles.For(0)
	out := ansi.Strip(MetricsChart(s, Chart{Label: "TPS", Data: []float64{5}}, 60))
	if !strings.Contains(out, "collecting samples") {
		t.Errorf("chart = %q, want placeholder", out)
	}

	out = ansi.Strip(MetricsChart(s, Chart{Label: "TPS", Data: []float64{1000, 1200}, Peak: 1200}, 60))
	for _, want := range []string{"cur: 1.2K", "min: 1.0K", "peak: 1.2K"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q:\n%s", want, out)
		}
	}
}

func TestStatusBar(t *testing.T) {
	s := styles.For(0)
	out := ansi.Strip(StatusBar(s, 120,
		Feed{Name: "metrics", State: domain.Degraded(time.Time{}, 3, nil)},
		Feed{Name: "stream", State: domain.ConnectionState{Phase: domain.PhaseReconnecting, Attempt: 2, NextDelay: time.Second, Err: "connection refused"}},
	))
	for _, want := range []string{"degraded (3 failures)", "reconnecting #2 in 1s", "connection refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar %q missing %q", out, want)
		}
	}
}

func TestServicesPanel_Sorted(t *testing.T) {
	s := styles.For(0)
	vm := aggregator.ViewModel{
		Services: map[string]bool{"rpc": true, "consensus": false},
		System:   domain.SystemStats{Units: map[string]bool{"monad-bft.service": true}},
	}
	out := ansi.Strip(ServicesPanel(s, vm))
	want := []string{"● consensus", "● rpc", "● monad-bft.service"}
	lines := strings.Split(out, "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
