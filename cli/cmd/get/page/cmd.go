package page

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd/setup"
	"openportal.dev/openportal/cli/internal/flags/enum"
	"openportal.dev/openportal/descriptor"
	"openportal.dev/openportal/loader"
)

const (
	FlagOutput               = "output"
	FlagTTL                  = "ttl"
	FlagSkipCache            = "skip-cache"
	FlagStaleWhileRevalidate = "stale-while-revalidate"
	FlagStrict               = "strict"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:        "page {page-id...}",
		Aliases:    []string{"pages", "p"},
		SuggestFor: []string{"config", "configs"},
		Short:      "Get page configuration(s) from a portal origin",
		Args:       cobra.MinimumNArgs(1),
		Long: `Get page configuration(s) from a portal origin.

Configurations are served from the cache while fresh and fetched from the
origin otherwise. A fetch revalidates with the entity tag of the cached
entry, so an unchanged page refreshes without transferring its body again.

Page ids route to origins through the resolvers of the configuration
file; the origin flag short-circuits resolution to a single base URL.`,
		Example: strings.TrimSpace(`
Getting a single page configuration:

get page dashboard --origin https://portal.example.com

Bypassing the cache and printing the raw configuration:

get page dashboard --origin https://portal.example.com --skip-cache -ojson

Serving a stale entry immediately and refreshing it in the background:

get page dashboard --stale-while-revalidate

Routing page ids through configured resolvers:

get pages dashboard admin/users --config portal.yaml
`),
		RunE:              GetPage,
		DisableAutoGenTag: true,
	}

	enum.VarP(cmd.Flags(), FlagOutput, "o", []string{OutputTable, OutputYAML, OutputJSON, OutputTree}, "output format of the page configurations")
	cmd.Flags().Duration(FlagTTL, 0, "freshness lifetime of the cached entry, overriding the configured default")
	cmd.Flags().Bool(FlagSkipCache, false, "bypass the cache in both directions and always fetch from the origin")
	cmd.Flags().Bool(FlagStaleWhileRevalidate, false, "serve expired entries immediately and refresh them in the background")
	cmd.Flags().Bool(FlagStrict, false, "validate fetched configurations against the page configuration schema")
	setup.RegisterOriginFlags(cmd)

	return cmd
}

func GetPage(cmd *cobra.Command, args []string) (retErr error) {
	output, err := enum.Get(cmd.Flags(), FlagOutput)
	if err != nil {
		return fmt.Errorf("getting %s flag failed: %w", FlagOutput, err)
	}
	loadOpts, err := loadOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	loaderOpts, err := loaderOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	pageLoader, closeStore, err := setup.LoaderForCommand(cmd, loaderOpts...)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, closeStore())
	}()

	configs := make([]*descriptor.PageConfig, 0, len(args))
	for _, pageID := range args {
		config, err := pageLoader.Load(cmd.Context(), pageID, loadOpts...)
		if err != nil {
			return fmt.Errorf("loading page %q failed: %w", pageID, err)
		}
		configs = append(configs, config)
	}

	data, err := encodeConfigs(output, configs)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func loadOptionsFromFlags(cmd *cobra.Command) ([]loader.LoadOption, error) {
	var opts []loader.LoadOption
	if cmd.Flags().Changed(FlagTTL) {
		ttl, err := cmd.Flags().GetDuration(FlagTTL)
		if err != nil {
			return nil, fmt.Errorf("getting %s flag failed: %w", FlagTTL, err)
		}
		opts = append(opts, loader.WithTTL(ttl))
	}
	skip, err := cmd.Flags().GetBool(FlagSkipCache)
	if err != nil {
		return nil, fmt.Errorf("getting %s flag failed: %w", FlagSkipCache, err)
	}
	if skip {
		opts = append(opts, loader.WithSkipCache())
	}
	stale, err := cmd.Flags().GetBool(FlagStaleWhileRevalidate)
	if err != nil {
		return nil, fmt.Errorf("getting %s flag failed: %w", FlagStaleWhileRevalidate, err)
	}
	if stale {
		opts = append(opts, loader.WithStaleWhileRevalidate())
	}
	return opts, nil
}

func loaderOptionsFromFlags(cmd *cobra.Command) ([]loader.LoaderOption, error) {
	strict, err := cmd.Flags().GetBool(FlagStrict)
	if err != nil {
		return nil, fmt.Errorf("getting %s flag failed: %w", FlagStrict, err)
	}
	if strict {
		return []loader.LoaderOption{loader.WithStrictValidation()}, nil
	}
	return nil, nil
}
