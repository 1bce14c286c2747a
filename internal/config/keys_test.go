package config

import (
	"strings"
	"testing"
)

func TestLookup_Exists(t *testing.T) {
	spec := Lookup("metrics-url")
	if spec == nil {
		t.Fatal("expected to find key 'metrics-url', got nil")
	}
	if spec.Name != "metrics-url" {
		t.Errorf("expected Name %q, got %q", "metrics-url", spec.Name)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	spec := Lookup("  WS-URL ")
	if spec == nil {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if spec.Name != "ws-url" {
		t.Errorf("expected Name %q, got %q", "ws-url", spec.Name)
	}
}

func TestLookup_NotFound(t *testing.T) {
	if spec := Lookup("nonexistent-key"); spec != nil {
		t.Errorf("expected nil for unknown key, got %+v", spec)
	}
}

func TestKeys_AllHaveGetAndSet(t *testing.T) {
	for _, k := range Keys {
		if k.Get == nil {
			t.Errorf("key %q has nil Get function", k.Name)
		}
		if k.Set == nil {
			t.Errorf("key %q has nil Set function", k.Name)
		}
		if k.Description == "" {
			t.Errorf("key %q has empty Description", k.Name)
		}
	}
}

// sampleValues holds one valid, canonical value per key.
var sampleValues = map[string]string{
	"metrics-url":        "http://node:8889/metrics",
	"ws-url":             "ws://node:8080",
	"stream-protocol":    "records",
	"metric-profile":     "monad",
	"poll-interval":      "2s",
	"fetch-timeout":      "500ms",
	"degraded-threshold": "5",
	"backoff-base":       "1s",
	"backoff-max":        "1m0s",
	"render-interval":    "50ms",
	"system-interval":    "5s",
	"heartbeat-window":   "3s",
	"tps-history":        "120",
	"counter-samples":    "20",
	"block-rows":         "20",
	"backfill-blocks":    "0",
	"disk-path":          "/var/lib/monad",
	"units":              "monad-bft,monad-execution",
	"theme":              "amber",
	"log-file":           "off",
	"log-level":          "debug",
}

func TestKeys_GetSetRoundtrip(t *testing.T) {
	for _, k := range Keys {
		v, ok := sampleValues[k.Name]
		if !ok {
			t.Errorf("key %q has no sample value", k.Name)
			continue
		}
		cfg := Defaults()
		if err := k.Set(&cfg, v); err != nil {
			t.Errorf("key %q: Set(%q) = %v", k.Name, v, err)
			continue
		}
		if got := k.Get(&cfg); got != v {
			t.Errorf("key %q: Set then Get = %q, want %q", k.Name, got, v)
		}
	}
}

func TestKeys_SampleValuesValidate(t *testing.T) {
	cfg := Defaults()
	for _, k := range Keys {
		if err := k.Set(&cfg, sampleValues[k.Name]); err != nil {
			t.Fatalf("key %q: %v", k.Name, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config built from sample values is invalid: %v", err)
	}
}

func TestKeys_SetRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	for name, v := range map[string]string{
		"poll-interval": "fast",
		"block-rows":    "ten",
	} {
		if err := Lookup(name).Set(&cfg, v); err == nil {
			t.Errorf("key %q accepted %q", name, v)
		}
	}
}

func TestKeys_UnitsTrimmed(t *testing.T) {
	cfg := Defaults()
	if err := Lookup("units").Set(&cfg, " a, ,b "); err != nil {
		t.Fatal(err)
	}
	if got := Lookup("units").Get(&cfg); got != "a,b" {
		t.Errorf("units = %q, want %q", got, "a,b")
	}
}

func TestKeyNames(t *testing.T) {
	names := KeyNames()
	if len(names) != len(Keys) {
		t.Fatalf("expected %d names, got %d", len(Keys), len(names))
	}
	for i, name := range names {
		if name != Keys[i].Name {
			t.Errorf("index %d: expected %q, got %q", i, Keys[i].Name, name)
		}
	}
}

func TestKeysHelp_ContainsAllKeys(t *testing.T) {
	help := KeysHelp()
	if !strings.Contains(help, "Available keys:") {
		t.Error("expected 'Available keys:' header in help output")
	}
	for _, k := range Keys {
		if !strings.Contains(help, k.Name) {
			t.Errorf("expected key %q in help output", k.Name)
		}
		if !strings.Contains(help, k.Description) {
			t.Errorf("expected description %q in help output", k.Description)
		}
	}
}
