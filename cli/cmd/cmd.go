package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/cache"
	"openportal.dev/openportal/cli/cmd/configuration"
	"openportal.dev/openportal/cli/cmd/describe"
	"openportal.dev/openportal/cli/cmd/get"
	portalcmd "openportal.dev/openportal/cli/cmd/internal/cmd"
	"openportal.dev/openportal/cli/cmd/preload"
	"openportal.dev/openportal/cli/cmd/render"
	"openportal.dev/openportal/cli/cmd/setup/hooks"
	"openportal.dev/openportal/cli/cmd/version"
	"openportal.dev/openportal/cli/internal/flags/log"
)

// Execute adds all child commands to the Cmd command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the Cmd.
func Execute() {
	err := New().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal [sub-command]",
		Short: "The OpenPortal command line client",
		Long: `The OpenPortal command line client works with the page configurations
  served by portal origins: it fetches and caches them, validates them,
  and renders them into the element trees a client would mount.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: hooks.PreRunE,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	configuration.RegisterConfigFlag(cmd)

	cmd.PersistentFlags().Duration(portalcmd.TimeoutFlag, 0, `HTTP client timeout, overriding the config file value (e.g. "30s", "5m"). Use "0" to disable the timeout.`)
	cmd.PersistentFlags().Duration(portalcmd.TCPDialTimeoutFlag, 0, `TCP dial timeout for establishing connections (e.g. "30s"). Overrides config file value.`)
	cmd.PersistentFlags().Duration(portalcmd.TCPKeepAliveFlag, 0, `TCP keep-alive interval (e.g. "30s"). Overrides config file value.`)
	cmd.PersistentFlags().Duration(portalcmd.TLSHandshakeTimeoutFlag, 0, `TLS handshake timeout (e.g. "10s"). Overrides config file value.`)
	cmd.PersistentFlags().Duration(portalcmd.ResponseHeaderTimeoutFlag, 0, `HTTP response header timeout (e.g. "10s"). Overrides config file value.`)
	cmd.PersistentFlags().Duration(portalcmd.IdleConnTimeoutFlag, 0, `HTTP idle connection timeout (e.g. "90s"). Overrides config file value.`)
	log.RegisterLoggingFlags(cmd.PersistentFlags())

	cmd.AddCommand(get.New())
	cmd.AddCommand(preload.New())
	cmd.AddCommand(cache.New())
	cmd.AddCommand(render.New())
	cmd.AddCommand(describe.New())
	cmd.AddCommand(version.New())
	return cmd
}
