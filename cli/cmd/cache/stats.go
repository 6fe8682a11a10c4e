package cache

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/setup"
)

func newStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the entries of the page configuration cache",
		Long: `Show the entries of the page configuration cache.

Only a persistent cache backend carries entries across invocations; with
the in-memory backends this lists the (empty) store of this process.`,
		RunE:              runStats,
		DisableAutoGenTag: true,
	}
}

func runStats(cmd *cobra.Command, _ []string) (retErr error) {
	store, closeStore, err := setup.StoreForCommand(cmd)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, closeStore())
	}()

	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "the cache holds no entries")
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PageID < entries[j].PageID })

	now := time.Now()
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Page", "Version", "ETag", "Fetched", "Freshness"})
	for _, entry := range entries {
		freshness := "stale"
		if entry.Fresh(now) {
			freshness = fmt.Sprintf("fresh for %s", entry.TTL(now).Round(time.Second))
		}
		t.AppendRow(table.Row{
			entry.PageID,
			entry.Config.Version,
			entry.ETag,
			entry.FetchedAt.Local().Format(time.DateTime),
			freshness,
		})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return nil
}
