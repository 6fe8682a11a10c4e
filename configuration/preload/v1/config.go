// Package v1 configures the pages warmed by the preload command.
package v1

import (
	"fmt"

	genericv1 "openportal.dev/openportal/configuration/v1"
	"openportal.dev/openportal/runtime"
)

const (
	// ConfigType defines the type identifier for preload configurations.
	ConfigType = "preload.config.openportal.dev"
	Version    = "v1"
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&Config{},
		runtime.NewType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config lists pages whose configurations should be fetched ahead of
// navigation.
type Config struct {
	Type runtime.Type `json:"type"`
	// Pages are the page ids to warm.
	Pages []string `json:"pages"`
	// TTL optionally overrides the freshness lifetime of warmed entries.
	TTL *genericv1.Duration `json:"ttl,omitempty"`
	// Concurrency bounds parallel warmup fetches. 0 picks a sensible
	// default.
	Concurrency int `json:"concurrency,omitempty"`
}

var _ runtime.Typed = (*Config)(nil)

func (c *Config) GetType() runtime.Type {
	return c.Type
}

func (c *Config) SetType(typ runtime.Type) {
	c.Type = typ
}

func (c *Config) DeepCopyTyped() runtime.Typed {
	copied := &Config{Type: c.Type, TTL: c.TTL, Concurrency: c.Concurrency}
	if c.Pages != nil {
		copied.Pages = make([]string, len(c.Pages))
		copy(copied.Pages, c.Pages)
	}
	return copied
}

// LookupConfig collects all preload entries from a central generic config.
// Page lists concatenate; scalar fields follow last-wins.
func LookupConfig(cfg *genericv1.Config) (*Config, error) {
	merged := &Config{Type: runtime.NewType(ConfigType, Version)}

	if cfg == nil {
		return merged, nil
	}

	filtered, err := genericv1.Filter(cfg, &genericv1.FilterOptions{
		ConfigTypes: []runtime.Type{
			runtime.NewType(ConfigType, Version),
			runtime.NewUnversionedType(ConfigType),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter config: %w", err)
	}

	for _, entry := range filtered.Configurations {
		var config Config
		if err := Scheme.Convert(entry, &config); err != nil {
			return nil, fmt.Errorf("failed to decode preload config: %w", err)
		}
		merged.Pages = append(merged.Pages, config.Pages...)
		if config.TTL != nil {
			merged.TTL = config.TTL
		}
		if config.Concurrency != 0 {
			merged.Concurrency = config.Concurrency
		}
	}

	return merged, nil
}
