// Package v1 configures the cache store backing the page config loader.
package v1

import (
	"fmt"

	genericv1 "openportal.dev/openportal/configuration/v1"
	"openportal.dev/openportal/runtime"
)

const (
	// ConfigType defines the type identifier for cache configurations.
	ConfigType = "cache.config.openportal.dev"
	Version    = "v1"
)

// Backend selects the cache store implementation.
type Backend string

const (
	// BackendMemory is an unbounded in-process map. The default.
	BackendMemory Backend = "memory"
	// BackendLRU bounds the entry count, evicting least recently used pages.
	BackendLRU Backend = "lru"
	// BackendLevelDB persists entries on disk across sessions.
	BackendLevelDB Backend = "leveldb"
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&Config{},
		runtime.NewType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config represents the cache store configuration.
type Config struct {
	Type runtime.Type `json:"type"`

	// Backend selects the store implementation. Defaults to "memory".
	Backend Backend `json:"backend,omitempty"`

	// DefaultTTL is the freshness lifetime applied to entries when the
	// caller does not override it. Defaults to 1h.
	DefaultTTL *genericv1.Duration `json:"defaultTTL,omitempty"`

	// MaxEntries bounds the entry count of the lru backend. 0 means
	// unbounded. Ignored by other backends.
	MaxEntries int `json:"maxEntries,omitempty"`

	// Path locates the database of the leveldb backend. Ignored by other
	// backends.
	Path string `json:"path,omitempty"`
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
	return &copied
}

// Validate checks backend-specific requirements.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory, BackendLRU:
	case BackendLevelDB:
		if c.Path == "" {
			return fmt.Errorf("cache backend %q requires a path", c.Backend)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	return nil
}

// LookupConfig creates a cache configuration from a central generic config.
// Later entries override earlier ones field by field.
func LookupConfig(cfg *genericv1.Config) (*Config, error) {
	merged := &Config{
		Type:    runtime.NewType(ConfigType, Version),
		Backend: BackendMemory,
	}

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
			return nil, fmt.Errorf("failed to decode cache config: %w", err)
		}
		if config.Backend != "" {
			merged.Backend = config.Backend
		}
		if config.DefaultTTL != nil {
			merged.DefaultTTL = config.DefaultTTL
		}
		if config.MaxEntries != 0 {
			merged.MaxEntries = config.MaxEntries
		}
		if config.Path != "" {
			merged.Path = config.Path
		}
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
