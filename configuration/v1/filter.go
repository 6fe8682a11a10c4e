package v1

import (
	"slices"

	"openportal.dev/openportal/runtime"
)

type FilterOptions struct {
	// ConfigTypes restricts the entries kept by Filter. An empty list yields
	// an empty config.
	ConfigTypes []runtime.Type
}

// Filter returns a copy of the config containing only entries whose type is
// listed in the options. Entry order is preserved.
func Filter(config *Config, options *FilterOptions) (*Config, error) {
	filtered := &Config{
		Type:           config.Type,
		Configurations: make([]*runtime.Raw, 0, len(config.Configurations)),
	}
	for _, entry := range config.Configurations {
		if slices.Contains(options.ConfigTypes, entry.GetType()) {
			filtered.Configurations = append(filtered.Configurations, entry)
		}
	}
	return filtered, nil
}

// FlatMap merges the provided configs into a single config, in order. Entries
// that are themselves generic configs are flattened recursively so that
// nested configuration files collapse into one entry list.
func FlatMap(configs ...*Config) (*Config, error) {
	merged := &Config{
		Type:           runtime.NewType(ConfigType, Version),
		Configurations: make([]*runtime.Raw, 0),
	}
	for _, config := range configs {
		if config == nil {
			continue
		}
		for _, entry := range config.Configurations {
			if Scheme.IsRegistered(entry.GetType()) {
				var nested Config
				if err := Scheme.Convert(entry, &nested); err == nil {
					flattened, err := FlatMap(&nested)
					if err != nil {
						return nil, err
					}
					merged.Configurations = append(merged.Configurations, flattened.Configurations...)
					continue
				}
			}
			merged.Configurations = append(merged.Configurations, entry)
		}
	}
	return merged, nil
}
