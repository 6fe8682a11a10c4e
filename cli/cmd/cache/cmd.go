// Package cache holds the commands inspecting and pruning the cache store.
// They operate on the store directly and never reach an origin, so they
// work without any resolver configuration.
package cache

import (
	"github.com/spf13/cobra"
)

// New represents any command that is related to the page configuration cache.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache {stats|clear}",
		Short: "Inspect and prune the page configuration cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newStats())
	cmd.AddCommand(newClear())
	return cmd
}
