// Package log wires the logging flags into slog handler construction.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"openportal.dev/openportal/cli/internal/flags/enum"
	"openportal.dev/openportal/cli/internal/flags/log/filter"
	loggingv1 "openportal.dev/openportal/configuration/logging/v1"
)

const (
	FlagLogLevel  = "loglevel"
	FlagLogFormat = "logformat"
	FlagLogFilter = "logfilter"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// RegisterLoggingFlags adds the logging flags to the given flag set,
// usually the persistent flags of the root command.
func RegisterLoggingFlags(flags *pflag.FlagSet) {
	enum.Var(flags, FlagLogLevel, []string{
		"warn",
		"debug",
		"info",
		"error",
	}, "set the log level")
	enum.Var(flags, FlagLogFormat, []string{FormatText, FormatJSON}, "set the log format")
	flags.StringArray(FlagLogFilter, nil, `set a per-realm log level as realm=level, repeatable (e.g. --logfilter loader=debug)`)
}

// GetBaseLogger builds a logger from the command's logging flags alone, for
// use before the configuration file is available.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	return GetLogger(cmd, nil)
}

// GetLogger builds a logger from the command's logging flags combined with
// the logging configuration. An explicitly set --loglevel flag takes
// precedence over the configured default level, and --logfilter entries
// override configured realm rules for the same realm.
func GetLogger(cmd *cobra.Command, cfg *loggingv1.Config) (*slog.Logger, error) {
	level, err := GetLogLevel(cmd)
	if err != nil {
		return nil, err
	}
	if cfg != nil && cfg.Settings.DefaultLevel != "" && !cmd.Flags().Changed(FlagLogLevel) {
		if err := level.UnmarshalText([]byte(cfg.Settings.DefaultLevel)); err != nil {
			return nil, fmt.Errorf("invalid default log level %q: %w", cfg.Settings.DefaultLevel, err)
		}
	}

	format, err := enum.Get(cmd.Flags(), FlagLogFormat)
	if err != nil {
		return nil, err
	}
	handler, err := newHandler(cmd.ErrOrStderr(), format, level)
	if err != nil {
		return nil, err
	}

	realmFilters := make(map[string]slog.Level)
	if cfg != nil {
		if realmFilters, err = filter.RealmFiltersFromConfig(cfg); err != nil {
			return nil, err
		}
	}
	specs, err := cmd.Flags().GetStringArray(FlagLogFilter)
	if err != nil {
		return nil, err
	}
	flagFilters, err := filter.KeyFiltersFromStrings(specs...)
	if err != nil {
		return nil, err
	}
	for realm, minLevel := range flagFilters {
		realmFilters[realm] = minLevel
	}
	if len(realmFilters) > 0 {
		handler = filter.New(handler, filter.LoggingKeyRealm, realmFilters)
	}

	return slog.New(handler), nil
}

// GetLogLevel reads the --loglevel flag.
func GetLogLevel(cmd *cobra.Command) (slog.Level, error) {
	logLevel, err := enum.Get(cmd.Flags(), FlagLogLevel)
	if err != nil {
		return slog.LevelWarn, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", logLevel)
	}
	return level, nil
}

func newHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	case FormatText:
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}
