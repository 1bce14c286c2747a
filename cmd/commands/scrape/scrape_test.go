package scrape

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/config"
	"nathanbeddoewebdev/chainwatch/internal/logging"
)

const sampleExposition = `# HELP block_height Latest block.
# TYPE block_height gauge
block_height 12345
finalized_block_height 12340
peer_count 42
tps 17.5
service_up{service="rpc"} 1
service_up{service="consensus"} 0
`

func newMetricsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupTestConfig writes a config pointing at url and makes it the active file.
func setupTestConfig(t *testing.T, url string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.Defaults()
	cfg.MetricsURL = url
	cfg.LogFile = logging.Off
	cfg.BackoffBase = config.Duration(time.Millisecond)
	cfg.BackoffMax = config.Duration(5 * time.Millisecond)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
}

func execScrape(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestScrape_TableOutput(t *testing.T) {
	srv := newMetricsServer(t, http.StatusOK, sampleExposition)
	setupTestConfig(t, srv.URL+"/metrics")

	stdout, stderr := execScrape(t)

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	for _, want := range []string{
		"FIELD",
		"block height",
		"12,345",
		"finalized height",
		"12,340",
		"42 (ok)",
		"17.5",
		"service consensus",
		"down",
		"service rpc",
		"up",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "latency p99") {
		t.Errorf("unreported field should be omitted, got:\n%s", stdout)
	}
	if strings.Index(stdout, "service consensus") > strings.Index(stdout, "service rpc") {
		t.Errorf("services should be sorted by name, got:\n%s", stdout)
	}
}

func TestScrape_JSONOutput(t *testing.T) {
	srv := newMetricsServer(t, http.StatusOK, sampleExposition)
	setupTestConfig(t, srv.URL+"/metrics")

	stdout, stderr := execScrape(t, "-o", "json")

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}

	var got struct {
		BlockHeight uint64          `json:"block_height"`
		PeerCount   uint64          `json:"peer_count"`
		Services    map[string]bool `json:"services"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout)
	}
	if got.BlockHeight != 12345 || got.PeerCount != 42 {
		t.Errorf("unexpected values: %+v", got)
	}
	if !got.Services["rpc"] || got.Services["consensus"] {
		t.Errorf("unexpected services: %v", got.Services)
	}
}

func TestScrape_RetriesThenFails(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	setupTestConfig(t, srv.URL)

	stdout, stderr := execScrape(t, "--retries", "3")

	if stdout != "" {
		t.Errorf("expected no stdout, got: %s", stdout)
	}
	if !strings.Contains(stderr, "unexpected status 503") {
		t.Errorf("expected status error, got: %s", stderr)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestScrape_RecoversOnRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("block_height 7\n"))
	}))
	t.Cleanup(srv.Close)
	setupTestConfig(t, srv.URL)

	stdout, stderr := execScrape(t)

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "block height") || hits.Load() != 2 {
		t.Errorf("expected success on second attempt (hits=%d), got:\n%s", hits.Load(), stdout)
	}
}

func TestScrape_InvalidOutput(t *testing.T) {
	setupTestConfig(t, "http://127.0.0.1:1/metrics")

	_, stderr := execScrape(t, "-o", "yaml")

	if !strings.Contains(stderr, "unknown output format") {
		t.Errorf("expected output format error, got: %s", stderr)
	}
}

func TestScrape_InvalidConfig(t *testing.T) {
	setupTestConfig(t, "ftp://node/metrics")

	_, stderr := execScrape(t)

	if !strings.Contains(stderr, "metrics-url") {
		t.Errorf("expected validation error for metrics-url, got: %s", stderr)
	}
}
