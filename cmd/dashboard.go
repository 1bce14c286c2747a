package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nathanbeddoewebdev/chainwatch/internal/aggregator"
	"nathanbeddoewebdev/chainwatch/internal/config"
	"nathanbeddoewebdev/chainwatch/internal/engine"
	"nathanbeddoewebdev/chainwatch/internal/logging"
	"nathanbeddoewebdev/chainwatch/internal/metrics"
	"nathanbeddoewebdev/chainwatch/internal/stream"
	"nathanbeddoewebdev/chainwatch/internal/system"
	"nathanbeddoewebdev/chainwatch/internal/tui"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// errNoTerminal is returned when the dashboard is started without a TTY.
var errNoTerminal = errors.New("the dashboard needs an interactive terminal (use \"chainwatch scrape\" for plain output)")

func runDashboard(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Effective(configPath, cmd.Flags())
	if err != nil {
		return err
	}

	logger, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runApp(ctx, cancel, cfg, logger)
}

// runApp wires producers, aggregator, engine and UI for one dashboard
// session and blocks until the user quits or ctx is cancelled.
func runApp(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger *logrus.Logger) error {
	units := system.NewSystemdUnits()
	defer units.Close()

	producers, err := buildProducers(cfg, logger, units)
	if err != nil {
		return err
	}

	dash, err := tui.NewDashboard(ctx, cancel, tui.Options{Theme: cfg.Theme})
	if err != nil {
		return err
	}

	state := aggregator.New(aggregatorOptions(cfg))
	loop := engine.New(state, dash.Renderer(), producers, engine.Options{
		RenderInterval: cfg.RenderInterval.Std(),
		Logger:         logger,
	})

	logger.WithFields(logrus.Fields{
		"metrics_url": cfg.MetricsURL,
		"ws_url":      cfg.WSURL,
		"protocol":    cfg.StreamProtocol,
	}).Info("starting dashboard")

	var g errgroup.Group
	g.Go(func() error { return loop.Run(ctx) })

	uiErr := dash.Run()
	cancel()
	loopErr := g.Wait()

	if err := errors.Join(uiErr, loopErr); err != nil {
		logger.WithError(err).Error("dashboard stopped with an error")
		return err
	}
	logger.Info("dashboard stopped")
	return nil
}

// aggregatorOptions sizes the view state's windows from cfg.
func aggregatorOptions(cfg *config.Config) aggregator.Options {
	return aggregator.Options{
		TPSHistory:      cfg.TPSHistory,
		BlockRows:       cfg.BlockRows,
		CounterSamples:  cfg.CounterSamples,
		HeartbeatWindow: cfg.HeartbeatWindow.Std(),
	}
}

// buildProducers creates the metrics poller, the block stream and the
// host sampler from cfg.
func buildProducers(cfg *config.Config, logger logrus.FieldLogger, units system.UnitChecker) ([]engine.Producer, error) {
	fields, err := cfg.FieldMap()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	protocol, err := cfg.Protocol()
	if err != nil {
		return nil, err
	}

	poller := metrics.NewPoller(metrics.Options{
		URL:               cfg.MetricsURL,
		Fields:            fields,
		Interval:          cfg.PollInterval.Std(),
		Timeout:           cfg.FetchTimeout.Std(),
		DegradedThreshold: cfg.DegradedThreshold,
		Logger:            logger,
	})

	blocks := stream.New(stream.Options{
		URL:         cfg.WSURL,
		Protocol:    protocol,
		Fields:      cfg.Records,
		Backfill:    cfg.BackfillBlocks,
		BackoffBase: cfg.BackoffBase.Std(),
		BackoffMax:  cfg.BackoffMax.Std(),
		Logger:      logger,
	})

	host := system.NewSource(
		system.NewHostSampler(cfg.DiskPath, cfg.Units, units),
		cfg.SystemInterval.Std(),
		logger,
	)

	return []engine.Producer{poller, blocks, host}, nil
}
