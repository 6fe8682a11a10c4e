package render

import (
	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/render/page"
)

// New represents any command that is related to rendering objects.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render {page}",
		Short: "Render portal objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(page.New())
	return cmd
}
