package get

import (
	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/get/page"
)

// New represents any command that is related to retrieving ( "get"ting ) objects
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get {page|pages|p}",
		Short: "Get anything from a portal origin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(page.New())
	return cmd
}
