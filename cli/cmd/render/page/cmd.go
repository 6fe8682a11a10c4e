package page

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"openportal.dev/openportal/cli/cmd/setup"
	"openportal.dev/openportal/cli/internal/flags/enum"
	"openportal.dev/openportal/loader"
	"openportal.dev/openportal/render"
)

const (
	FlagOutput     = "output"
	FlagProduction = "production"
	FlagSkipCache  = "skip-cache"
)

const (
	OutputTree = "tree"
	OutputJSON = "json"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "page {page-id}",
		Aliases: []string{"pages", "p"},
		Short:   "Render a page configuration into its element tree",
		Args:    cobra.ExactArgs(1),
		Long: `Render a page configuration into the element tree a client would mount.

Every widget renders through a generic implementation that passes its
configuration through, so the resulting tree mirrors the page structure
without portal-specific widget code. A failing widget is contained: its
subtree becomes an error element and the rest of the page is unaffected.`,
		Example: strings.TrimSpace(`
Rendering a page as a tree:

render page dashboard --origin https://portal.example.com

Rendering the element tree a client would receive:

render page dashboard --origin https://portal.example.com -ojson

Redacting widget failures the way a production client would:

render page dashboard --production
`),
		RunE:              RenderPage,
		DisableAutoGenTag: true,
	}

	enum.VarP(cmd.Flags(), FlagOutput, "o", []string{OutputTree, OutputJSON}, "output format of the rendered page")
	cmd.Flags().Bool(FlagProduction, false, "redact diagnostics of failed widgets to a generic message")
	cmd.Flags().Bool(FlagSkipCache, false, "bypass the cache and render the configuration the origin serves right now")
	setup.RegisterOriginFlags(cmd)

	return cmd
}

func RenderPage(cmd *cobra.Command, args []string) (retErr error) {
	output, err := enum.Get(cmd.Flags(), FlagOutput)
	if err != nil {
		return fmt.Errorf("getting %s flag failed: %w", FlagOutput, err)
	}
	// Piped output defaults to json so the box glyphs never hit scripts.
	if !cmd.Flags().Changed(FlagOutput) {
		if f, ok := cmd.OutOrStdout().(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
			output = OutputJSON
		}
	}
	production, err := cmd.Flags().GetBool(FlagProduction)
	if err != nil {
		return fmt.Errorf("getting %s flag failed: %w", FlagProduction, err)
	}
	skipCache, err := cmd.Flags().GetBool(FlagSkipCache)
	if err != nil {
		return fmt.Errorf("getting %s flag failed: %w", FlagSkipCache, err)
	}

	pageLoader, closeStore, err := setup.LoaderForCommand(cmd)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, closeStore())
	}()

	var loadOpts []loader.LoadOption
	if skipCache {
		loadOpts = append(loadOpts, loader.WithSkipCache())
	}
	config, err := pageLoader.Load(cmd.Context(), args[0], loadOpts...)
	if err != nil {
		return fmt.Errorf("loading page %q failed: %w", args[0], err)
	}

	registry := render.NewRegistry()
	registry.SetDefault(render.Generic{})
	var resolverOpts []render.ResolverOption
	if production {
		resolverOpts = append(resolverOpts, render.WithProductionMode())
	}
	resolver := render.NewResolver(registry, resolverOpts...)

	root, err := resolver.Resolve(cmd.Context(), config)
	if err != nil {
		return fmt.Errorf("rendering page %q failed: %w", args[0], err)
	}

	switch output {
	case OutputJSON:
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(root.ElementTree()); err != nil {
			return fmt.Errorf("encoding element tree failed: %w", err)
		}
	default:
		if err := render.WriteTree(cmd.OutOrStdout(), root); err != nil {
			return err
		}
	}

	widgets, errored := 0, 0
	root.Walk(func(node *render.Node) bool {
		if node.Type == render.PageNodeType {
			return true
		}
		widgets++
		if node.State == render.StateErrored {
			errored++
		}
		return true
	})
	fmt.Fprintf(cmd.ErrOrStderr(), "rendered %d widget(s), %d errored\n", widgets, errored)
	return nil
}
