// Package setup assembles the shared portal objects commands operate on
// from the configuration file and command flags.
package setup

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"openportal.dev/openportal/cache"
	"openportal.dev/openportal/cache/leveldb"
	"openportal.dev/openportal/cli/cmd/configuration"
	portalcmd "openportal.dev/openportal/cli/cmd/internal/cmd"
	portalctx "openportal.dev/openportal/cli/internal/context"
	"openportal.dev/openportal/cli/internal/flags/log"
	cachev1 "openportal.dev/openportal/configuration/cache/v1"
	httpv1 "openportal.dev/openportal/configuration/http/v1"
	loggingv1 "openportal.dev/openportal/configuration/logging/v1"
	resolversv1 "openportal.dev/openportal/configuration/resolvers/v1"
	genericv1 "openportal.dev/openportal/configuration/v1"
	"openportal.dev/openportal/loader"
	"openportal.dev/openportal/repository"
	"openportal.dev/openportal/repository/resolver"
	originv1 "openportal.dev/openportal/repository/spec/v1"
	"openportal.dev/openportal/runtime"
)

const (
	// FlagOrigin overrides the configured resolvers with a single origin
	// base URL.
	FlagOrigin = "origin"
	// FlagTokenEnv names the environment variable holding the bearer token
	// for origin requests.
	FlagTokenEnv = "token-env"
)

// RegisterOriginFlags adds the origin selection flags used by commands that
// fetch page configurations.
func RegisterOriginFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagOrigin, "", "base URL of the page origin, overriding configured resolvers")
	cmd.Flags().String(FlagTokenEnv, "", "environment variable holding the bearer token for origin requests")
}

// SetupConfig loads the configuration file and stores it in the command
// context. A missing or unreadable configuration is not fatal; commands then
// operate on an empty configuration.
func SetupConfig(cmd *cobra.Command) {
	if cfg, err := configuration.GetFlattenedConfigForCommand(cmd); err != nil {
		slog.DebugContext(cmd.Context(), "could not get configuration", slog.String("error", err.Error()))
	} else {
		ctx := portalctx.WithConfiguration(cmd.Context(), cfg)
		cmd.SetContext(ctx)
	}
}

// SetupLogging replaces the default logger with one honoring the logging
// section of the configuration file. CLI flags take precedence over the
// config file.
func SetupLogging(cmd *cobra.Command) error {
	cfg := portalctx.FromContext(cmd.Context()).Configuration()
	loggingCfg, err := loggingv1.LookupConfig(cfg)
	if err != nil {
		return fmt.Errorf("could not get logging configuration: %w", err)
	}
	logger, err := log.GetLogger(cmd, loggingCfg)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)
	return nil
}

// HTTPClientForCommand builds the HTTP client for origin requests from the
// configuration file, with global flags taking precedence.
func HTTPClientForCommand(cmd *cobra.Command) (*http.Client, error) {
	cfg := portalctx.FromContext(cmd.Context()).Configuration()
	httpCfg, err := httpv1.LookupConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not get http configuration: %w", err)
	}
	httpCfg, err = applyHTTPFlagOverrides(cmd, httpCfg)
	if err != nil {
		return nil, err
	}
	return repository.NewHTTPClient(repository.WithHTTPConfig(httpCfg)), nil
}

// CLI flags take precedence over the config file.
func applyHTTPFlagOverrides(cmd *cobra.Command, cfg *httpv1.Config) (*httpv1.Config, error) {
	overrides := &httpv1.Config{}
	for flagName, target := range map[string]**genericv1.Duration{
		portalcmd.TimeoutFlag:               &overrides.Timeout,
		portalcmd.TCPDialTimeoutFlag:        &overrides.TCPDialTimeout,
		portalcmd.TCPKeepAliveFlag:          &overrides.TCPKeepAlive,
		portalcmd.TLSHandshakeTimeoutFlag:   &overrides.TLSHandshakeTimeout,
		portalcmd.ResponseHeaderTimeoutFlag: &overrides.ResponseHeaderTimeout,
		portalcmd.IdleConnTimeoutFlag:       &overrides.IdleConnTimeout,
	} {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil || !flag.Changed {
			continue
		}
		value, err := cmd.Flags().GetDuration(flagName)
		if err != nil {
			return nil, fmt.Errorf("getting %s flag failed: %w", flagName, err)
		}
		*target = genericv1.NewDuration(value)
	}
	return httpv1.Merge(cfg, overrides), nil
}

// RepositoryForCommand assembles the page repository this command fetches
// from.
//
// With the origin flag set, a single HTTP repository serves all pages.
// Otherwise the resolvers of the configuration file route each page id to
// its origin. The flag takes precedence over the config file.
func RepositoryForCommand(cmd *cobra.Command) (repository.PageRepository, error) {
	client, err := HTTPClientForCommand(cmd)
	if err != nil {
		return nil, err
	}
	tokens, err := tokenSourceForCommand(cmd)
	if err != nil {
		return nil, err
	}

	opts := []repository.HTTPRepositoryOption{repository.WithHTTPClient(client)}
	if tokens != nil {
		opts = append(opts, repository.WithTokenSource(tokens))
	}

	origin, err := cmd.Flags().GetString(FlagOrigin)
	if err != nil {
		return nil, fmt.Errorf("getting %s flag failed: %w", FlagOrigin, err)
	}
	if origin != "" {
		return repository.NewHTTPRepository(origin, opts...)
	}

	cfg := portalctx.FromContext(cmd.Context()).Configuration()
	resolversCfg, err := resolversv1.LookupConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not get resolver configuration: %w", err)
	}
	if len(resolversCfg.Resolvers) == 0 {
		return nil, fmt.Errorf("no page origin configured: set --%s or add a %s entry to the configuration file", FlagOrigin, resolversv1.ConfigType)
	}

	rules := make([]resolver.Rule, 0, len(resolversCfg.Resolvers))
	for _, entry := range resolversCfg.Resolvers {
		repo, err := repositoryForOrigin(entry.Origin, opts...)
		if err != nil {
			return nil, fmt.Errorf("resolver for pattern %q: %w", entry.PagePattern, err)
		}
		rules = append(rules, resolver.Rule{
			PagePattern: entry.PagePattern,
			Priority:    entry.Priority,
			Repository:  repo,
		})
	}
	return resolver.NewRouter(rules)
}

func repositoryForOrigin(origin *runtime.Raw, opts ...repository.HTTPRepositoryOption) (repository.PageRepository, error) {
	if origin == nil {
		return nil, errors.New("origin specification missing")
	}
	spec, err := originv1.Scheme.NewObject(origin.GetType())
	if err != nil {
		return nil, err
	}
	if err := originv1.Scheme.Convert(origin, spec); err != nil {
		return nil, fmt.Errorf("could not decode origin specification: %w", err)
	}
	switch spec := spec.(type) {
	case *originv1.HTTPOrigin:
		if spec.PagePath != "" {
			opts = append(slices.Clone(opts), repository.WithPagePath(spec.PagePath))
		}
		return repository.NewHTTPRepository(spec.BaseURL, opts...)
	default:
		return nil, fmt.Errorf("unsupported origin type %q", origin.GetType())
	}
}

func tokenSourceForCommand(cmd *cobra.Command) (oauth2.TokenSource, error) {
	envName, err := cmd.Flags().GetString(FlagTokenEnv)
	if err != nil {
		return nil, fmt.Errorf("getting %s flag failed: %w", FlagTokenEnv, err)
	}
	if envName == "" {
		return nil, nil
	}
	token := os.Getenv(envName)
	if token == "" {
		return nil, fmt.Errorf("environment variable %q named by --%s is not set", envName, FlagTokenEnv)
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
}

// StoreForCommand creates the cache store selected by the configuration
// file. The returned close function releases backend resources and must be
// called once the command is done with the store.
func StoreForCommand(cmd *cobra.Command) (cache.Store, func() error, error) {
	cfg := portalctx.FromContext(cmd.Context()).Configuration()
	cacheCfg, err := cachev1.LookupConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get cache configuration: %w", err)
	}
	return storeFromConfig(cacheCfg)
}

func storeFromConfig(cfg *cachev1.Config) (cache.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case cachev1.BackendLRU:
		return cache.NewLRU(cfg.MaxEntries), noop, nil
	case cachev1.BackendLevelDB:
		store, err := leveldb.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open cache database: %w", err)
		}
		return store, store.Close, nil
	default:
		return cache.NewMemory(), noop, nil
	}
}

// LoaderForCommand wires the page loader of this command from the
// configuration file and the origin flags. Extra options are applied last
// and override the configured behavior.
func LoaderForCommand(cmd *cobra.Command, extra ...loader.LoaderOption) (*loader.Loader, func() error, error) {
	repo, err := RepositoryForCommand(cmd)
	if err != nil {
		return nil, nil, err
	}

	cfg := portalctx.FromContext(cmd.Context()).Configuration()
	cacheCfg, err := cachev1.LookupConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get cache configuration: %w", err)
	}
	store, closeStore, err := storeFromConfig(cacheCfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []loader.LoaderOption{loader.WithStore(store)}
	if cacheCfg.DefaultTTL != nil {
		opts = append(opts, loader.WithDefaultTTL(cacheCfg.DefaultTTL.Value()))
	}
	opts = append(opts, extra...)

	return loader.New(repo, opts...), closeStore, nil
}
