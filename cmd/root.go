package cmd

import (
	"os"

	cfgcmd "nathanbeddoewebdev/chainwatch/cmd/commands/config"
	"nathanbeddoewebdev/chainwatch/cmd/commands/scrape"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command. Without a subcommand it runs the
// dashboard.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "chainwatch",
		Short: "A live terminal dashboard for a blockchain node",
		Long: `chainwatch is a terminal dashboard for a single blockchain node. It polls
the node's Prometheus-style metrics endpoint, follows new blocks over a
websocket subscription and samples the host it runs on, then renders
everything in one continuously updating view.

Settings come from the config file, CHAINWATCH_* environment variables and
flags, in increasing order of precedence.

Quick start:
  chainwatch                                   # dashboard with defaults
  chainwatch --metrics-url http://node:8889/metrics --ws-url ws://node:8080
  chainwatch scrape                            # one-shot metrics table
  chainwatch config init                       # interactive setup`,
		Args:          cobra.NoArgs,
		RunE:          runDashboard,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (default: user config dir)")
	flags.String("metrics-url", "", "Metrics endpoint URL")
	flags.String("ws-url", "", "Block stream websocket URL")
	flags.String("stream-protocol", "", "Block stream protocol: jsonrpc or records")
	flags.String("theme", "", "Initial colour theme")
	flags.String("log-file", "", `Log file path, or "off"`)
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(scrape.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
