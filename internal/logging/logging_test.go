package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chainwatch.log")

	logger, closer, err := Open(path, "debug")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.WithField("component", "stream").Debug("dialing")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"level=debug", "component=stream", "dialing"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log %q missing %q", data, want)
		}
	}
}

func TestOpen_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainwatch.log")

	logger, closer, err := Open(path, "warn")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	closer.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn entry missing")
	}
}

func TestOpen_Off(t *testing.T) {
	logger, closer, err := Open("OFF", "info")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Error("dropped")
	if err := closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpen_BadLevel(t *testing.T) {
	if _, _, err := Open(Off, "chatty"); err == nil {
		t.Fatal("expected error for an unknown level")
	}
}
