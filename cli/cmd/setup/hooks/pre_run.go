package hooks

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/setup"
	"openportal.dev/openportal/cli/internal/flags/log"
)

// PreRunE prepares every command invocation: it installs the flag-derived
// logger, loads the configuration file into the command context, and then
// rebuilds the logger with the logging configuration applied.
func PreRunE(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)

	setup.SetupConfig(cmd)

	if err := setup.SetupLogging(cmd); err != nil {
		return err
	}

	if parent := cmd.Parent(); parent != nil {
		cmd.SetOut(parent.OutOrStdout())
		cmd.SetErr(parent.ErrOrStderr())
	}

	return nil
}
