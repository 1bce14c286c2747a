// Package config handles persistent user configuration for chainwatch.
//
// Configuration is stored as JSON at ~/.config/chainwatch/config.json (or
// the platform-equivalent path returned by os.UserConfigDir). Files ending
// in .yaml or .yml are read and written as YAML. Environment variables
// prefixed with CHAINWATCH_ are applied on top of the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"nathanbeddoewebdev/chainwatch/internal/aggregator"
	"nathanbeddoewebdev/chainwatch/internal/engine"
	"nathanbeddoewebdev/chainwatch/internal/metrics"
	"nathanbeddoewebdev/chainwatch/internal/retry"
	"nathanbeddoewebdev/chainwatch/internal/stream"
	"nathanbeddoewebdev/chainwatch/internal/system"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"
)

const (
	appDir   = "chainwatch"
	fileName = "config.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CHAINWATCH"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds every dashboard setting.
type Config struct {
	MetricsURL        string   `json:"metrics_url" yaml:"metrics_url" envconfig:"CHAINWATCH_METRICS_URL"`
	WSURL             string   `json:"ws_url" yaml:"ws_url" envconfig:"CHAINWATCH_WS_URL"`
	StreamProtocol    string   `json:"stream_protocol" yaml:"stream_protocol" envconfig:"CHAINWATCH_STREAM_PROTOCOL"`
	MetricProfile     string   `json:"metric_profile" yaml:"metric_profile" envconfig:"CHAINWATCH_METRIC_PROFILE"`
	PollInterval      Duration `json:"poll_interval" yaml:"poll_interval" envconfig:"CHAINWATCH_POLL_INTERVAL"`
	FetchTimeout      Duration `json:"fetch_timeout" yaml:"fetch_timeout" envconfig:"CHAINWATCH_FETCH_TIMEOUT"`
	DegradedThreshold int      `json:"degraded_threshold" yaml:"degraded_threshold" envconfig:"CHAINWATCH_DEGRADED_THRESHOLD"`
	BackoffBase       Duration `json:"backoff_base" yaml:"backoff_base" envconfig:"CHAINWATCH_BACKOFF_BASE"`
	BackoffMax        Duration `json:"backoff_max" yaml:"backoff_max" envconfig:"CHAINWATCH_BACKOFF_MAX"`
	RenderInterval    Duration `json:"render_interval" yaml:"render_interval" envconfig:"CHAINWATCH_RENDER_INTERVAL"`
	SystemInterval    Duration `json:"system_interval" yaml:"system_interval" envconfig:"CHAINWATCH_SYSTEM_INTERVAL"`
	HeartbeatWindow   Duration `json:"heartbeat_window" yaml:"heartbeat_window" envconfig:"CHAINWATCH_HEARTBEAT_WINDOW"`
	TPSHistory        int      `json:"tps_history" yaml:"tps_history" envconfig:"CHAINWATCH_TPS_HISTORY"`
	BlockRows         int      `json:"block_rows" yaml:"block_rows" envconfig:"CHAINWATCH_BLOCK_ROWS"`
	CounterSamples    int      `json:"counter_samples" yaml:"counter_samples" envconfig:"CHAINWATCH_COUNTER_SAMPLES"`
	BackfillBlocks    int      `json:"backfill_blocks" yaml:"backfill_blocks" envconfig:"CHAINWATCH_BACKFILL_BLOCKS"`
	DiskPath          string   `json:"disk_path" yaml:"disk_path" envconfig:"CHAINWATCH_DISK_PATH"`
	Units             []string `json:"units,omitempty" yaml:"units,omitempty" envconfig:"CHAINWATCH_UNITS"`
	Theme             string   `json:"theme" yaml:"theme" envconfig:"CHAINWATCH_THEME"`
	LogFile           string   `json:"log_file,omitempty" yaml:"log_file,omitempty" envconfig:"CHAINWATCH_LOG_FILE"`
	LogLevel          string   `json:"log_level" yaml:"log_level" envconfig:"CHAINWATCH_LOG_LEVEL"`

	// Metrics and Records override individual metric names and record
	// paths. They are only read from the file.
	Metrics metrics.FieldMap    `json:"metrics,omitzero" yaml:"metrics,omitempty" ignored:"true"`
	Records stream.RecordFields `json:"records,omitzero" yaml:"records,omitempty" ignored:"true"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		MetricsURL:        metrics.DefaultURL,
		WSURL:             stream.DefaultURL,
		StreamProtocol:    string(stream.ProtocolJSONRPC),
		MetricProfile:     metrics.ProfileDefault,
		PollInterval:      Duration(metrics.DefaultInterval),
		FetchTimeout:      Duration(metrics.DefaultTimeout),
		DegradedThreshold: metrics.DefaultDegradedThreshold,
		BackoffBase:       Duration(retry.DefaultBackoffBase),
		BackoffMax:        Duration(retry.DefaultBackoffMax),
		RenderInterval:    Duration(engine.DefaultRenderInterval),
		SystemInterval:    Duration(system.DefaultInterval),
		HeartbeatWindow:   Duration(aggregator.DefaultHeartbeatWindow),
		TPSHistory:        aggregator.DefaultTPSHistory,
		BlockRows:         aggregator.DefaultBlockRows,
		CounterSamples:    aggregator.DefaultCounterSamples,
		BackfillBlocks:    stream.DefaultBackfill,
		DiskPath:          "/",
		Theme:             styles.Themes[0].Name,
		LogLevel:          "info",
	}
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk on top of Defaults. If the file
// does not exist, the defaults are returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

// Resolve loads the file at path (or the default path when empty) and
// applies the environment overlay. Flags are applied by the caller.
func Resolve(path string) (*Config, error) {
	cfg, err := loadFrom(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyEnv overlays CHAINWATCH_* environment variables. Unset variables
// leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// --- Derived component settings ---

// FieldMap returns the metric names for the configured profile with the
// file's per-field overrides applied.
func (c *Config) FieldMap() (metrics.FieldMap, error) {
	fm, err := metrics.ProfileFieldMap(c.MetricProfile)
	if err != nil {
		return metrics.FieldMap{}, err
	}
	return fm.Override(c.Metrics), nil
}

// Protocol returns the parsed stream protocol.
func (c *Config) Protocol() (stream.Protocol, error) {
	return stream.ParseProtocol(c.StreamProtocol)
}

// --- Duration ---

// Duration is a time.Duration that reads and writes its text form ("1s")
// in JSON, YAML and environment variables.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}
