package cache

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/setup"
)

func newClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [page-id...]",
		Short: "Remove entries from the page configuration cache",
		Long: `Remove entries from the page configuration cache.

Without arguments the whole store is cleared. With page ids only those
entries are removed; ids without a cached entry are ignored.`,
		RunE:              runClear,
		DisableAutoGenTag: true,
	}
}

func runClear(cmd *cobra.Command, args []string) (retErr error) {
	store, closeStore, err := setup.StoreForCommand(cmd)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, closeStore())
	}()

	if len(args) == 0 {
		evicted := store.Len()
		store.Clear()
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d cached page(s)\n", evicted)
		return nil
	}

	evicted := 0
	for _, pageID := range args {
		if _, ok := store.Peek(pageID); ok {
			evicted++
		}
		store.Delete(pageID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared %d of %d requested page(s)\n", evicted, len(args))
	return nil
}
