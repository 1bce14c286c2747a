package config

import (
	"nathanbeddoewebdev/chainwatch/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage chainwatch configuration",
		Long: "View and modify persistent chainwatch settings.\n\n" +
			"Configuration is stored at ~/.config/chainwatch/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())
	cmd.AddCommand(PathCommand())
	cmd.AddCommand(InitCommand())

	return cmd
}
