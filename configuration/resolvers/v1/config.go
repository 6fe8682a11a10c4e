// Package v1 configures page id based origin resolution.
package v1

import (
	"fmt"

	genericv1 "openportal.dev/openportal/configuration/v1"
	"openportal.dev/openportal/runtime"
)

const (
	// ConfigType defines the type identifier for resolver configurations.
	ConfigType = "resolvers.config.openportal.dev"
	Version    = "v1"
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&Config{},
		runtime.NewType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config routes pages to origins using glob patterns.
//
//	type: resolvers.config.openportal.dev/v1
//	resolvers:
//	  - pagePattern: admin/*
//	    priority: 10
//	    origin:
//	      type: HTTPOrigin/v1
//	      baseUrl: https://admin.portal.example.com
type Config struct {
	Type runtime.Type `json:"type"`
	// Resolvers assign page id patterns to origin specifications. All
	// entries are considered for every page; the highest priority matching
	// entry wins, declaration order breaking ties.
	Resolvers []Resolver `json:"resolvers"`
}

// Resolver assigns a page id pattern to a single origin specification.
type Resolver struct {
	// PagePattern is a glob matched against page ids.
	PagePattern string `json:"pagePattern"`
	// Origin is the typed origin specification serving matched pages.
	Origin *runtime.Raw `json:"origin"`
	// Priority orders competing resolvers, higher first.
	Priority int `json:"priority,omitempty"`
}

var _ runtime.Typed = (*Config)(nil)

func (c *Config) GetType() runtime.Type {
	return c.Type
}

func (c *Config) SetType(typ runtime.Type) {
	c.Type = typ
}

func (c *Config) DeepCopyTyped() runtime.Typed {
	copied := &Config{Type: c.Type}
	if c.Resolvers != nil {
		copied.Resolvers = make([]Resolver, len(c.Resolvers))
		for i, resolver := range c.Resolvers {
			copied.Resolvers[i] = Resolver{
				PagePattern: resolver.PagePattern,
				Priority:    resolver.Priority,
			}
			if resolver.Origin != nil {
				copied.Resolvers[i].Origin = resolver.Origin.DeepCopy()
			}
		}
	}
	return copied
}

// LookupConfig collects all resolver entries from a central generic config,
// in declaration order.
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
			return nil, fmt.Errorf("failed to decode resolvers config: %w", err)
		}
		merged.Resolvers = append(merged.Resolvers, config.Resolvers...)
	}

	return merged, nil
}
