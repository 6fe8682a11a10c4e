// Package configuration connects the portal configuration file to the CLI.
package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	genericv1 "openportal.dev/openportal/configuration/v1"
)

const (
	// FlagConfig selects the configuration file read by every command.
	FlagConfig = "config"

	// EnvConfig overrides the default configuration file locations.
	EnvConfig = "PORTAL_CONFIG"
)

// RegisterConfigFlag adds the configuration file flag to the command.
func RegisterConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagConfig, "", `supply configuration by a given configuration file.
By default (without specifying custom locations with this flag), the file will be read from one of the well known locations:
1. The path specified in the PORTAL_CONFIG environment variable
2. $XDG_CONFIG_HOME/portal/config.yaml ($HOME/.config/portal/config.yaml if XDG_CONFIG_HOME is unset)
3. $HOME/.portalconfig`)
}

// GetFlattenedConfigForCommand loads the configuration file of the command
// and flattens generic configurations nested inside it into a single list.
//
// A file requested explicitly through the flag or the environment variable
// must load. When neither is set, the well known locations are probed and
// an absent file yields an empty configuration.
func GetFlattenedConfigForCommand(cmd *cobra.Command) (*genericv1.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return genericv1.FlatMap(&genericv1.Config{})
	}

	cfg, err := genericv1.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return genericv1.FlatMap(cfg)
}

func configPath(cmd *cobra.Command) (string, error) {
	path, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return "", fmt.Errorf("getting %s flag failed: %w", FlagConfig, err)
	}
	if path != "" {
		return path, nil
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path, nil
	}
	for _, candidate := range defaultPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func defaultPaths() []string {
	var paths []string
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "portal", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".portalconfig"))
	}
	return paths
}
