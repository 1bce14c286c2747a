package config

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "metrics-url").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set parses value and applies it to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	stringKey("metrics-url", "Prometheus-style metrics endpoint", func(c *Config) *string { return &c.MetricsURL }),
	stringKey("ws-url", "Websocket endpoint for block events", func(c *Config) *string { return &c.WSURL }),
	stringKey("stream-protocol", "Block stream protocol (jsonrpc or records)", func(c *Config) *string { return &c.StreamProtocol }),
	stringKey("metric-profile", "Metric name profile (default or monad)", func(c *Config) *string { return &c.MetricProfile }),
	durationKey("poll-interval", "Delay between metrics scrapes", func(c *Config) *Duration { return &c.PollInterval }),
	durationKey("fetch-timeout", "Timeout of a single metrics scrape", func(c *Config) *Duration { return &c.FetchTimeout }),
	intKey("degraded-threshold", "Consecutive failed scrapes before metrics are degraded", func(c *Config) *int { return &c.DegradedThreshold }),
	durationKey("backoff-base", "First reconnect delay ceiling of the block stream", func(c *Config) *Duration { return &c.BackoffBase }),
	durationKey("backoff-max", "Largest reconnect delay of the block stream", func(c *Config) *Duration { return &c.BackoffMax }),
	durationKey("render-interval", "Dashboard redraw interval", func(c *Config) *Duration { return &c.RenderInterval }),
	durationKey("system-interval", "Delay between host resource samples", func(c *Config) *Duration { return &c.SystemInterval }),
	durationKey("heartbeat-window", "Time for the block pulse to fade out", func(c *Config) *Duration { return &c.HeartbeatWindow }),
	intKey("tps-history", "Number of TPS and latency samples kept", func(c *Config) *int { return &c.TPSHistory }),
	intKey("block-rows", "Number of recent blocks shown", func(c *Config) *int { return &c.BlockRows }),
	intKey("counter-samples", "Transaction counter samples the TPS rate spans", func(c *Config) *int { return &c.CounterSamples }),
	intKey("backfill-blocks", "Blocks requested on connect (jsonrpc only)", func(c *Config) *int { return &c.BackfillBlocks }),
	stringKey("disk-path", "Filesystem path whose usage is shown", func(c *Config) *string { return &c.DiskPath }),
	listKey("units", "Comma-separated systemd units to watch", func(c *Config) *[]string { return &c.Units }),
	stringKey("theme", "Initial colour theme", func(c *Config) *string { return &c.Theme }),
	stringKey("log-file", "Log file path, or \"off\"", func(c *Config) *string { return &c.LogFile }),
	stringKey("log-level", "Log level (debug, info, warn, error)", func(c *Config) *string { return &c.LogLevel }),
}

func stringKey(name, desc string, field func(*Config) *string) KeySpec {
	return KeySpec{
		Name:        name,
		Description: desc,
		Get:         func(cfg *Config) string { return *field(cfg) },
		Set: func(cfg *Config, v string) error {
			*field(cfg) = strings.TrimSpace(v)
			return nil
		},
	}
}

func durationKey(name, desc string, field func(*Config) *Duration) KeySpec {
	return KeySpec{
		Name:        name,
		Description: desc,
		Get:         func(cfg *Config) string { return field(cfg).String() },
		Set: func(cfg *Config, v string) error {
			var d Duration
			if err := d.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(cfg) = d
			return nil
		},
	}
}

func intKey(name, desc string, field func(*Config) *int) KeySpec {
	return KeySpec{
		Name:        name,
		Description: desc,
		Get:         func(cfg *Config) string { return strconv.Itoa(*field(cfg)) },
		Set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", name, v)
			}
			*field(cfg) = n
			return nil
		},
	}
}

func listKey(name, desc string, field func(*Config) *[]string) KeySpec {
	return KeySpec{
		Name:        name,
		Description: desc,
		Get:         func(cfg *Config) string { return strings.Join(*field(cfg), ",") },
		Set: func(cfg *Config, v string) error {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*field(cfg) = items
			return nil
		},
	}
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		maxLen = max(maxLen, len(k.Name))
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	b.WriteString("\nEach key can also be set with " + EnvPrefix + "_<KEY> (dashes become underscores).\n")
	return b.String()
}
