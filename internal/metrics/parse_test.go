package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

func TestParseExposition(t *testing.T) {
	body := `# HELP block_height Current head.
# TYPE block_height gauge
block_height 1042
peer_count{job="node"} 12
service_up{service="rpc",zone="a"} 1
monad_execution_ledger_block_num{job="test"} 4.1929095e+07 1765694534456

latency_p99_ms 3.5
`
	samples, errs := ParseExposition(body)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []Sample{
		{Name: "block_height", Value: 1042},
		{Name: "peer_count", Labels: map[string]string{"job": "node"}, Value: 12},
		{Name: "service_up", Labels: map[string]string{"service": "rpc", "zone": "a"}, Value: 1},
		{
			Name:      "monad_execution_ledger_block_num",
			Labels:    map[string]string{"job": "test"},
			Value:     41929095,
			Timestamp: time.UnixMilli(1765694534456),
		},
		{Name: "latency_p99_ms", Value: 3.5},
	}
	if diff := cmp.Diff(want, samples); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestParseExposition_MalformedLinesAreSkipped(t *testing.T) {
	body := "block_height 10\n" +
		"peer_count\n" +
		"tps abc\n" +
		"{job=\"x\"} 1\n" +
		"service_up{service=\"rpc\" 1\n" +
		"latency_p99_ms 4 notatime\n" +
		"finalized_block_height 8\n"

	samples, errs := ParseExposition(body)

	var names []string
	for _, s := range samples {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"block_height", "finalized_block_height"}, names); diff != "" {
		t.Fatalf("parsed names mismatch (-want +got):\n%s", diff)
	}
	if len(errs) != 5 {
		t.Fatalf("expected 5 parse errors, got %d: %v", len(errs), errs)
	}

	var pe *ParseError
	if !errors.As(errs[0], &pe) {
		t.Fatalf("expected *ParseError, got %T", errs[0])
	}
	if pe.Line != 2 {
		t.Fatalf("expected line 2, got %d", pe.Line)
	}
	if !errors.Is(errs[0], domain.ErrParse) {
		t.Fatal("expected parse error to wrap domain.ErrParse")
	}
}

func TestParseExposition_SpecialValuesAndEscapes(t *testing.T) {
	body := `tps NaN
peer_count +Inf
service_up{service="a \"quoted\" name",} 0
`
	samples, errs := ParseExposition(body)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if !math.IsNaN(samples[0].Value) {
		t.Fatalf("expected NaN, got %v", samples[0].Value)
	}
	if !math.IsInf(samples[1].Value, 1) {
		t.Fatalf("expected +Inf, got %v", samples[1].Value)
	}
	if got := samples[2].Labels["service"]; got != `a "quoted" name` {
		t.Fatalf("unexpected label value %q", got)
	}
}
