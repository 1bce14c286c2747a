package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"nathanbeddoewebdev/chainwatch/internal/metrics"
	"nathanbeddoewebdev/chainwatch/internal/stream"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"
)

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "config: " + e.Problems[0]
	}
	return fmt.Sprintf("config: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks the whole configuration and returns a
// *ValidationError listing every problem, or nil.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if err := checkURL(c.MetricsURL, "http", "https"); err != "" {
		add("metrics-url: %s", err)
	}
	if err := checkURL(c.WSURL, "ws", "wss", "http", "https"); err != "" {
		add("ws-url: %s", err)
	}
	if _, err := stream.ParseProtocol(c.StreamProtocol); err != nil {
		add("stream-protocol: must be one of %s", strings.Join([]string{string(stream.ProtocolJSONRPC), string(stream.ProtocolRecords)}, ", "))
	}
	if _, err := metrics.ProfileFieldMap(c.MetricProfile); err != nil {
		add("metric-profile: must be one of %s", strings.Join(metrics.Profiles(), ", "))
	}

	for _, d := range []struct {
		key string
		val Duration
	}{
		{"poll-interval", c.PollInterval},
		{"fetch-timeout", c.FetchTimeout},
		{"backoff-base", c.BackoffBase},
		{"backoff-max", c.BackoffMax},
		{"render-interval", c.RenderInterval},
		{"system-interval", c.SystemInterval},
		{"heartbeat-window", c.HeartbeatWindow},
	} {
		if d.val <= 0 {
			add("%s: must be positive, got %s", d.key, d.val)
		}
	}
	if c.BackoffBase > 0 && c.BackoffMax > 0 && c.BackoffMax < c.BackoffBase {
		add("backoff-max: %s is below backoff-base %s", c.BackoffMax, c.BackoffBase)
	}

	if c.DegradedThreshold < 1 {
		add("degraded-threshold: must be at least 1, got %d", c.DegradedThreshold)
	}
	if c.TPSHistory < 2 {
		add("tps-history: must be at least 2, got %d", c.TPSHistory)
	}
	if c.CounterSamples < 2 {
		add("counter-samples: must be at least 2, got %d", c.CounterSamples)
	}
	if c.BlockRows < 1 {
		add("block-rows: must be at least 1, got %d", c.BlockRows)
	}
	if c.BackfillBlocks < 0 {
		add("backfill-blocks: must not be negative, got %d", c.BackfillBlocks)
	}

	if !slices.Contains(styles.ThemeNames(), c.Theme) {
		add("theme: must be one of %s", strings.Join(styles.ThemeNames(), ", "))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		add("log-level: %q is not a log level", c.LogLevel)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkURL(raw string, schemes ...string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("%q is not a URL", raw)
	}
	if !slices.Contains(schemes, strings.ToLower(u.Scheme)) {
		return fmt.Sprintf("scheme must be one of %s", strings.Join(schemes, ", "))
	}
	if u.Host == "" {
		return fmt.Sprintf("%q has no host", raw)
	}
	return ""
}

// CheckValue reports whether value is acceptable for the named key,
// judged against the rest of cfg. cfg is not modified.
func CheckValue(cfg *Config, name, value string) error {
	spec := Lookup(name)
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q", name)
	}
	next := *cfg
	if err := spec.Set(&next, value); err != nil {
		return err
	}
	err := next.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for _, p := range verr.Problems {
		if strings.HasPrefix(p, spec.Name+":") {
			return errors.New(p)
		}
	}
	return nil
}
