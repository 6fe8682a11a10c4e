package preload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/setup"
	portalctx "openportal.dev/openportal/cli/internal/context"
	preloadv1 "openportal.dev/openportal/configuration/preload/v1"
	"openportal.dev/openportal/loader"
)

const (
	FlagConcurrency = "concurrency"
	FlagTTL         = "ttl"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preload [page-id...]",
		Short: "Warm the page configuration cache",
		Long: `Warm the page configuration cache ahead of navigation.

Pages given as arguments are fetched in addition to the pages listed in
the preload section of the configuration file. Pages that fail to load
are logged and skipped; only cancellation aborts the sweep.`,
		Example: strings.TrimSpace(`
Warming the pages of the configuration file:

preload --config portal.yaml

Warming specific pages against a single origin:

preload dashboard admin/users --origin https://portal.example.com
`),
		RunE:              Preload,
		DisableAutoGenTag: true,
	}

	cmd.Flags().Int(FlagConcurrency, 0, "maximum number of parallel fetches, 0 uses the configured or built-in limit")
	cmd.Flags().Duration(FlagTTL, 0, "freshness lifetime of warmed entries, overriding the configured default")
	setup.RegisterOriginFlags(cmd)

	return cmd
}

func Preload(cmd *cobra.Command, args []string) (retErr error) {
	cfg := portalctx.FromContext(cmd.Context()).Configuration()
	preloadCfg, err := preloadv1.LookupConfig(cfg)
	if err != nil {
		return fmt.Errorf("could not get preload configuration: %w", err)
	}

	pages := collectPages(preloadCfg.Pages, args)
	if len(pages) == 0 {
		return fmt.Errorf("no pages to preload: pass page ids or add a %s entry to the configuration file", preloadv1.ConfigType)
	}

	concurrency, err := cmd.Flags().GetInt(FlagConcurrency)
	if err != nil {
		return fmt.Errorf("getting %s flag failed: %w", FlagConcurrency, err)
	}
	if concurrency == 0 {
		concurrency = preloadCfg.Concurrency
	}

	// CLI flag takes precedence over the config file.
	var loadOpts []loader.LoadOption
	switch {
	case cmd.Flags().Changed(FlagTTL):
		ttl, err := cmd.Flags().GetDuration(FlagTTL)
		if err != nil {
			return fmt.Errorf("getting %s flag failed: %w", FlagTTL, err)
		}
		loadOpts = append(loadOpts, loader.WithTTL(ttl))
	case preloadCfg.TTL != nil:
		loadOpts = append(loadOpts, loader.WithTTL(preloadCfg.TTL.Value()))
	}

	pageLoader, closeStore, err := setup.LoaderForCommand(cmd)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, closeStore())
	}()

	if err := pageLoader.WarmUp(cmd.Context(), pages, concurrency, loadOpts...); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "preload swept %d page(s)\n", len(pages))
	return nil
}

// collectPages merges configured and requested pages, dropping duplicates
// while keeping first-seen order.
func collectPages(configured, requested []string) []string {
	pages := make([]string, 0, len(configured)+len(requested))
	seen := make(map[string]struct{}, len(configured)+len(requested))
	for _, pageID := range append(append([]string{}, configured...), requested...) {
		if _, ok := seen[pageID]; ok {
			continue
		}
		seen[pageID] = struct{}{}
		pages = append(pages, pageID)
	}
	return pages
}
