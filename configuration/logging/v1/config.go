// Package v1 configures logging levels, globally and per realm.
package v1

import (
	"fmt"

	genericv1 "openportal.dev/openportal/configuration/v1"
	"openportal.dev/openportal/runtime"
)

const (
	// ConfigType defines the type identifier for logging configurations.
	ConfigType = "logging.config.openportal.dev"
	Version    = "v1"
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&Config{},
		runtime.NewType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config represents the logging configuration.
type Config struct {
	Type runtime.Type `json:"type"`

	// Settings defines generic logging settings.
	Settings Settings `json:"settings"`
}

type Settings struct {
	// DefaultLevel defines the logging level to use if no specific rule matches.
	DefaultLevel string `json:"defaultLevel,omitempty"`
	// Rules defines a list of rules that can be used to filter logs based on conditions.
	Rules []Rule `json:"rules,omitempty"`
}

type Rule struct {
	// Level defines the logging level for this rule.
	Level string `json:"level"`
	// Conditions defines the conditions that must be met for this rule to apply.
	Conditions []Condition `json:"conditions"`
}

type Condition struct {
	// Realm defines the realm for this condition.
	// Realm identifies a category of functionality (loader, cache, repository)
	// and can be used to filter groups of logs.
	Realm string `json:"realm,omitempty"`
}

var _ runtime.Typed = (*Config)(nil)

func (c *Config) GetType() runtime.Type {
	return c.Type
}

func (c *Config) SetType(typ runtime.Type) {
	c.Type = typ
}

func (c *Config) DeepCopyTyped() runtime.Typed {
	copied := *c
	copied.Settings.Rules = make([]Rule, len(c.Settings.Rules))
	copy(copied.Settings.Rules, c.Settings.Rules)
	return &copied
}

// LookupConfig creates a logging configuration from a central generic config.
func LookupConfig(cfg *genericv1.Config) (*Config, error) {
	if cfg == nil {
		return nil, nil
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
	cfgs := make([]*Config, 0, len(filtered.Configurations))
	for _, entry := range filtered.Configurations {
		var config Config
		if err := Scheme.Convert(entry, &config); err != nil {
			return nil, fmt.Errorf("failed to decode logging config: %w", err)
		}
		cfgs = append(cfgs, &config)
	}
	return Merge(cfgs...), nil
}

// Merge merges the provided configs into a single config.
// The last DefaultLevel wins; rules accumulate without duplicates.
func Merge(configs ...*Config) *Config {
	if len(configs) == 0 {
		return nil
	}

	merged := &Config{Type: runtime.NewType(ConfigType, Version)}
	for _, config := range configs {
		if config.Settings.DefaultLevel != "" {
			merged.Settings.DefaultLevel = config.Settings.DefaultLevel
		}

		for _, rule := range config.Settings.Rules {
			exists := false
			for _, existing := range merged.Settings.Rules {
				if existing.Level == rule.Level && len(existing.Conditions) == len(rule.Conditions) {
					exists = true
					break
				}
			}
			if !exists {
				merged.Settings.Rules = append(merged.Settings.Rules, rule)
			}
		}
	}

	return merged
}
