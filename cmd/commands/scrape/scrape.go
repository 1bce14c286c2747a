package scrape

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/config"
	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/logging"
	"nathanbeddoewebdev/chainwatch/internal/metrics"
	"nathanbeddoewebdev/chainwatch/internal/retry"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewCommand returns the "scrape" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the node's metrics once and print them",
		Long: `Scrape the metrics endpoint once and print the recognized fields.

Uses the same configuration as the dashboard (file, environment and flags).
Transient failures are retried with backoff before giving up.

Examples:
  # Table output (default)
  chainwatch scrape

  # JSON output for scripting
  chainwatch scrape --metrics-url http://node:8889/metrics -o json`,
		Args: cobra.NoArgs,
		Run:  runScrape,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	cmd.Flags().Int("retries", retry.DefaultConfig().MaxAttempts, "Attempts before giving up")

	return cmd
}

func runScrape(cmd *cobra.Command, _ []string) {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown output format %q (use table or json)\n", output)
		return
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Effective(configPath, cmd.Flags())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	fields, err := cfg.FieldMap()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	logger, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	defer closer.Close()

	poller := metrics.NewPoller(metrics.Options{
		URL:     cfg.MetricsURL,
		Fields:  fields,
		Timeout: cfg.FetchTimeout.Std(),
		Logger:  logger,
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	retries, _ := cmd.Flags().GetInt("retries")
	policy := retry.Config{
		MaxAttempts: retries,
		BaseDelay:   cfg.BackoffBase.Std(),
		MaxDelay:    cfg.BackoffMax.Std(),
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.WithError(err).WithFields(logrus.Fields{
				"attempt": attempt,
				"delay":   delay,
			}).Info("scrape failed, retrying")
		},
	}

	var snap domain.MetricSnapshot
	err = retry.Do(ctx, policy, nil, func() error {
		var fetchErr error
		snap, fetchErr = poller.Fetch(ctx)
		return fetchErr
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error scraping %s: %v\n", cfg.MetricsURL, err)
		return
	}

	switch output {
	case "json":
		printSnapshotJSON(cmd, snap)
	default:
		printSnapshotTable(cmd, snap)
	}
}
