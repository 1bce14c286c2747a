package config

import (
	"errors"
	"fmt"
	"os"

	"nathanbeddoewebdev/chainwatch/internal/config"
	"nathanbeddoewebdev/chainwatch/internal/tui"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// runInitForm shows the interactive form; tests replace it.
var runInitForm = tui.RunConfigInit

// InitCommand returns the "config init" command.
func InitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or update the config file interactively",
		Long: "Walk through the connection and display settings and save them.\n\n" +
			"Existing values are used as the starting point. Use --accessible for\n" +
			"a screen-reader friendly prompt.",
		Args:         cobra.NoArgs,
		RunE:         runInit,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("accessible", false, "Use accessible (line-based) prompts")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	accessible, _ := cmd.Flags().GetBool("accessible")
	if !accessible && !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("config init needs an interactive terminal (or --accessible)")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	updated, err := runInitForm(cfg, accessible)
	if errors.Is(err, tui.ErrAborted) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Aborted, nothing saved.")
		return nil
	}
	if err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := updated.Save(); err != nil {
		return err
	}

	p, _ := config.Path()
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", p)
	return nil
}
