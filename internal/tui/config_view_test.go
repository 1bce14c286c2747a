package tui

import (
	"strings"
	"testing"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

func keyIndex(t *testing.T, name string) int {
	t.Helper()
	for i, k := range config.Keys {
		if k.Name == name {
			return i
		}
	}
	t.Fatalf("no key %q", name)
	return -1
}

func openEditor(t *testing.T, m configViewModel, name string) configViewModel {
	t.Helper()
	for range keyIndex(t, name) {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(configViewModel)
	}
	next, _ := m.Update(runes("e"))
	m = next.(configViewModel)
	if !m.editing {
		t.Fatal("edit key did not open the editor")
	}
	return m
}

func TestConfigView_EditAndSave(t *testing.T) {
	cfg := config.Defaults()
	var saved *config.Config
	m := newConfigViewModel(&cfg, func(c *config.Config) error {
		saved = c
		return nil
	})

	m = openEditor(t, m, "poll-interval")
	if got := m.editor.Value(); got != "1s" {
		t.Errorf("editor starts with %q, want the current value", got)
	}
	m.editor.SetValue("5s")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("saving returned no command")
	}
	msg := cmd()
	if _, ok := msg.(configSavedMsg); !ok {
		t.Fatalf("save produced %T, want configSavedMsg", msg)
	}
	if saved == nil || saved.PollInterval.Std() != 5*time.Second {
		t.Fatalf("saved config = %+v, want poll interval 5s", saved)
	}
	if cfg.PollInterval.Std() != 5*time.Second {
		t.Errorf("in-memory config not updated: %s", cfg.PollInterval)
	}

	next, _ = next.Update(msg)
	m = next.(configViewModel)
	if m.editing || m.status != "Configuration saved" || m.isError {
		t.Errorf("after save: editing=%v status=%q isError=%v", m.editing, m.status, m.isError)
	}
}

func TestConfigView_RejectsInvalidValue(t *testing.T) {
	cfg := config.Defaults()
	m := newConfigViewModel(&cfg, func(*config.Config) error {
		t.Error("invalid value was saved")
		return nil
	})

	m = openEditor(t, m, "block-rows")
	m.editor.SetValue("0")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("invalid value produced a save command")
	}
	m = next.(configViewModel)
	if !m.isError || !strings.Contains(m.status, "block-rows") {
		t.Errorf("status = %q (isError=%v), want a block-rows error", m.status, m.isError)
	}
	if cfg.BlockRows != config.Defaults().BlockRows {
		t.Errorf("BlockRows changed to %d", cfg.BlockRows)
	}
}

func TestConfigView_CancelEdit(t *testing.T) {
	cfg := config.Defaults()
	m := newConfigViewModel(&cfg, func(*config.Config) error { return nil })

	m = openEditor(t, m, "theme")
	m.editor.SetValue("matrix")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(configViewModel)

	if m.editing {
		t.Error("esc did not close the editor")
	}
	if cfg.Theme != config.Defaults().Theme {
		t.Errorf("Theme changed to %q on cancel", cfg.Theme)
	}
}
