package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/config"
	"nathanbeddoewebdev/chainwatch/internal/tui"

	"golang.org/x/term"
)

// setupTestConfig points the config package at a temp file and returns its path.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// execConfig creates the config command, wires up output buffers, runs with the
// given args, and returns what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSet_MetricsURL(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "metrics-url", "http://10.0.0.5:8889/metrics")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"http://10.0.0.5:8889/metrics"`) {
		t.Errorf("expected confirmation with the URL, got: %s", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.MetricsURL != "http://10.0.0.5:8889/metrics" {
		t.Errorf("expected persisted URL, got %q", cfg.MetricsURL)
	}
}

func TestSet_Duration(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "POLL-INTERVAL", "1500ms")
	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `poll-interval set to "1.5s"`) {
		t.Errorf("unexpected confirmation: %s", stdout)
	}

	cfg, _ := config.Load()
	if cfg.PollInterval.Std() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %s", cfg.PollInterval)
	}
}

func TestSet_InvalidValue(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "theme", "neon")

	if !strings.Contains(stderr, "theme") {
		t.Errorf("expected a theme error, got: %s", stderr)
	}
	cfg, _ := config.Load()
	if cfg.Theme != config.Defaults().Theme {
		t.Errorf("invalid theme was saved: %q", cfg.Theme)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "bogus-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
	if !strings.Contains(stderr, "metrics-url") {
		t.Errorf("expected the list of valid keys, got: %s", stderr)
	}
}

func TestGet_Default(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "get", "ws-url")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if strings.TrimSpace(stdout) != config.Defaults().WSURL {
		t.Errorf("expected the default ws-url, got: %s", stdout)
	}
}

func TestGet_KeyFlag(t *testing.T) {
	path := setupTestConfig(t)

	cfg := config.Defaults()
	cfg.Theme = "matrix"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	stdout, _ := execConfig(t, "get", "--key", "theme")
	if strings.TrimSpace(stdout) != "matrix" {
		t.Errorf("expected 'matrix', got: %s", stdout)
	}
}

func TestGet_NotSet(t *testing.T) {
	setupTestConfig(t)

	stdout, _ := execConfig(t, "get", "units")
	if !strings.Contains(stdout, "not set") {
		t.Errorf("expected 'not set', got: %s", stdout)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "get", "bogus-key")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}

func TestPath(t *testing.T) {
	path := setupTestConfig(t)

	stdout, _ := execConfig(t, "path")
	if strings.TrimSpace(stdout) != path {
		t.Errorf("expected %q, got %q", path, stdout)
	}
}

// stubInitForm replaces the interactive form for the duration of a test.
func stubInitForm(t *testing.T, form func(*config.Config, bool) (*config.Config, error)) {
	t.Helper()
	orig := runInitForm
	runInitForm = form
	t.Cleanup(func() { runInitForm = orig })
}

func TestInit_SavesFormResult(t *testing.T) {
	path := setupTestConfig(t)

	existing := config.Defaults()
	existing.Theme = "matrix"
	if err := existing.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	var gotTheme string
	var gotAccessible bool
	stubInitForm(t, func(cfg *config.Config, accessible bool) (*config.Config, error) {
		gotTheme, gotAccessible = cfg.Theme, accessible
		out := *cfg
		out.MetricsURL = "http://10.0.0.5:8889/metrics"
		out.Units = []string{"monad-bft"}
		return &out, nil
	})

	stdout, stderr := execConfig(t, "init", "--accessible")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Configuration saved to "+path) {
		t.Errorf("expected save confirmation, got: %s", stdout)
	}
	if gotTheme != "matrix" || !gotAccessible {
		t.Errorf("form got theme %q accessible %v, want the existing config and --accessible", gotTheme, gotAccessible)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.MetricsURL != "http://10.0.0.5:8889/metrics" || cfg.Theme != "matrix" {
		t.Errorf("unexpected saved config: url=%q theme=%q", cfg.MetricsURL, cfg.Theme)
	}
	if len(cfg.Units) != 1 || cfg.Units[0] != "monad-bft" {
		t.Errorf("unexpected units: %v", cfg.Units)
	}
}

func TestInit_AbortSavesNothing(t *testing.T) {
	path := setupTestConfig(t)
	stubInitForm(t, func(*config.Config, bool) (*config.Config, error) {
		return nil, tui.ErrAborted
	})

	stdout, stderr := execConfig(t, "init", "--accessible")

	if !strings.Contains(stderr, "Aborted") {
		t.Errorf("expected abort notice, got: %s", stderr)
	}
	if stdout != "" {
		t.Errorf("unexpected stdout: %s", stdout)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("config file should not exist, stat err = %v", err)
	}
}

func TestInit_InvalidResultNotSaved(t *testing.T) {
	path := setupTestConfig(t)
	stubInitForm(t, func(cfg *config.Config, _ bool) (*config.Config, error) {
		out := *cfg
		out.Theme = "neon"
		return &out, nil
	})

	_, stderr := execConfig(t, "init", "--accessible")

	if !strings.Contains(stderr, "theme") {
		t.Errorf("expected a theme validation error, got: %s", stderr)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("invalid config was written, stat err = %v", err)
	}
}

func TestInit_RequiresTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("running attached to a terminal")
	}
	setupTestConfig(t)
	called := false
	stubInitForm(t, func(cfg *config.Config, _ bool) (*config.Config, error) {
		called = true
		return cfg, nil
	})

	_, stderr := execConfig(t, "init")

	if !strings.Contains(stderr, "interactive terminal") {
		t.Errorf("expected terminal error, got: %s", stderr)
	}
	if called {
		t.Error("form ran without a terminal")
	}
}
