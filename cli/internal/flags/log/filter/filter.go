// Package filter implements a slog.Handler wrapper that suppresses records
// below a per-realm minimum level, so that noisy subsystems can be silenced
// without lowering the global level.
package filter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	loggingv1 "openportal.dev/openportal/configuration/logging/v1"
)

// LoggingKeyRealm is the attribute key identifying the functionality
// category a log record belongs to, e.g. "loader" or "repository".
const LoggingKeyRealm = "realm"

type filter struct {
	handler slog.Handler
	filters map[string]slog.Level
	key     string
	// preset is the key value inherited through WithAttrs, so records of a
	// pre-configured logger are filtered without carrying the attribute on
	// every record.
	preset string
}

// New wraps a handler so that records carrying the given attribute key are
// dropped when their level is below the minimum configured for that value.
// Records without the attribute pass through unchanged.
func New(handler slog.Handler, key string, filters map[string]slog.Level) slog.Handler {
	return &filter{
		handler: handler,
		filters: filters,
		key:     key,
	}
}

// NewFromConfig wraps a handler with the realm rules of a logging
// configuration. Without rules the handler is returned unchanged.
func NewFromConfig(handler slog.Handler, cfg *loggingv1.Config) (slog.Handler, error) {
	if cfg == nil {
		return handler, nil
	}
	realmFilters, err := RealmFiltersFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get realm filters from config: %w", err)
	}
	if len(realmFilters) > 0 {
		handler = New(handler, LoggingKeyRealm, realmFilters)
	}
	return handler, nil
}

// RealmFiltersFromConfig flattens the rule list of a logging configuration
// into a realm to minimum level map.
func RealmFiltersFromConfig(cfg *loggingv1.Config) (map[string]slog.Level, error) {
	realmFilters := make(map[string]slog.Level)

	for _, rule := range cfg.Settings.Rules {
		var level slog.Level
		if err := level.UnmarshalText([]byte(rule.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level in rule %s: %w", rule.Level, err)
		}
		for _, condition := range rule.Conditions {
			if condition.Realm == "" {
				return nil, fmt.Errorf("condition realm cannot be empty in rule: %v", rule)
			}
			realmFilters[condition.Realm] = level
		}
	}

	return realmFilters, nil
}

// KeyFiltersFromStrings parses "key=level" filter specifications, as passed
// on the command line.
func KeyFiltersFromStrings(raw ...string) (map[string]slog.Level, error) {
	filters := make(map[string]slog.Level, len(raw))

	for _, spec := range raw {
		key, levelStr, found := strings.Cut(spec, "=")
		if !found {
			return nil, fmt.Errorf("invalid filter format: %s, expected key=level", spec)
		}

		var level slog.Level
		if err := level.UnmarshalText([]byte(levelStr)); err != nil {
			return nil, fmt.Errorf("invalid log level in filter %s: %w", spec, err)
		}

		filters[key] = level
	}

	return filters, nil
}

func (f *filter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.handler.Enabled(ctx, level)
}

func (f *filter) Handle(ctx context.Context, record slog.Record) error {
	if f.shouldFilter(record) {
		return nil
	}
	return f.handler.Handle(ctx, record)
}

func (f *filter) WithAttrs(attrs []slog.Attr) slog.Handler {
	preset := f.preset
	if preset == "" {
		for _, attr := range attrs {
			if attr.Key == f.key {
				preset = attr.Value.String()
				break
			}
		}
	}
	return &filter{
		handler: f.handler.WithAttrs(attrs),
		filters: f.filters,
		key:     f.key,
		preset:  preset,
	}
}

func (f *filter) WithGroup(name string) slog.Handler {
	return &filter{
		handler: f.handler.WithGroup(name),
		filters: f.filters,
		key:     f.key,
		preset:  f.preset,
	}
}

func (f *filter) shouldFilter(record slog.Record) bool {
	keyValue := f.preset
	if keyValue == "" {
		keyValue = f.valueFromRecord(record)
	}
	if keyValue == "" {
		return false
	}

	minLevel, exists := f.filters[keyValue]
	return exists && record.Level < minLevel
}

func (f *filter) valueFromRecord(record slog.Record) string {
	var value string
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == f.key {
			value = attr.Value.String()
			return false
		}
		return true
	})
	return value
}
