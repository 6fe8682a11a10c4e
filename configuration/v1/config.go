// Package v1 holds the central portal configuration: a generic, typed
// container whose entries are decoded on demand by the sub-configuration
// packages interested in them.
package v1

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"openportal.dev/openportal/runtime"
)

const (
	ConfigType = "generic.config.openportal.dev"
	Version    = "v1"
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&Config{},
		runtime.NewType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config holds configuration entities loaded through a configuration file.
// Entries stay opaque until a consumer filters and decodes the types it
// understands.
type Config struct {
	Type           runtime.Type   `json:"type"`
	Configurations []*runtime.Raw `json:"configurations"`
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
	if c.Configurations != nil {
		copied.Configurations = make([]*runtime.Raw, len(c.Configurations))
		for i, entry := range c.Configurations {
			copied.Configurations[i] = entry.DeepCopy()
		}
	}
	return copied
}

// Decode parses a serialized central configuration from YAML or JSON.
func Decode(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("could not decode portal configuration: %w", err)
	}
	if !config.Type.IsEmpty() && !Scheme.IsRegistered(config.Type) {
		return nil, fmt.Errorf("unsupported portal configuration type %q", config.Type)
	}
	return &config, nil
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read configuration file %q: %w", path, err)
	}
	config, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("configuration file %q: %w", path, err)
	}
	return config, nil
}
