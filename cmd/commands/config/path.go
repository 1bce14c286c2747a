package config

import (
	"fmt"

	"nathanbeddoewebdev/chainwatch/internal/config"

	"github.com/spf13/cobra"
)

// PathCommand returns the "config path" command.
func PathCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "path",
		Short:        "Print the config file location",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}
