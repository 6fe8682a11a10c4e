// Package v1 configures the HTTP client used to reach page configuration
// origins.
package v1

import (
	"fmt"
	"time"

	genericv1 "openportal.dev/openportal/configuration/v1"
	"openportal.dev/openportal/runtime"
)

const (
	// ConfigType defines the type identifier for HTTP client configurations.
	ConfigType = "http.config.openportal.dev"
	Version    = "v1"
)

// Default transport timeouts applied when no configuration is provided.
var (
	DefaultTimeout               = genericv1.Duration(0)
	DefaultTCPDialTimeout        = genericv1.Duration(30 * time.Second)
	DefaultTCPKeepAlive          = genericv1.Duration(30 * time.Second)
	DefaultTLSHandshakeTimeout   = genericv1.Duration(10 * time.Second)
	DefaultResponseHeaderTimeout = genericv1.Duration(10 * time.Second)
	DefaultIdleConnTimeout       = genericv1.Duration(90 * time.Second)
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&Config{},
		runtime.NewType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config represents the HTTP client configuration.
type Config struct {
	Type runtime.Type `json:"type"`

	// Timeout specifies the whole-request timeout as a Go duration string
	// (e.g. "30s", "5m", "1h"). If not set, the timeout is disabled.
	Timeout *genericv1.Duration `json:"timeout,omitempty"`

	// ResponseHeaderTimeout specifies the time limit to wait for a server's
	// response headers. If not set, defaults to 10s.
	ResponseHeaderTimeout *genericv1.Duration `json:"responseHeaderTimeout,omitempty"`

	// IdleConnTimeout specifies the maximum time an idle connection remains
	// open. If not set, defaults to 90s.
	IdleConnTimeout *genericv1.Duration `json:"idleConnTimeout,omitempty"`

	// TCPDialTimeout specifies the time limit for establishing a TCP
	// connection. If not set, defaults to 30s.
	TCPDialTimeout *genericv1.Duration `json:"tcpDialTimeout,omitempty"`

	// TCPKeepAlive specifies the interval between TCP keep-alive probes.
	// If not set, defaults to 30s.
	TCPKeepAlive *genericv1.Duration `json:"tcpKeepAlive,omitempty"`

	// TLSHandshakeTimeout specifies the maximum time to wait for a TLS
	// handshake. If not set, defaults to 10s.
	TLSHandshakeTimeout *genericv1.Duration `json:"tlsHandshakeTimeout,omitempty"`
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

// LookupConfig creates an HTTP configuration from a central generic config.
// Later entries override earlier ones field by field; defaults fill the rest.
func LookupConfig(cfg *genericv1.Config) (*Config, error) {
	defaultCfg := &Config{
		Timeout:               &DefaultTimeout,
		TCPDialTimeout:        &DefaultTCPDialTimeout,
		TCPKeepAlive:          &DefaultTCPKeepAlive,
		TLSHandshakeTimeout:   &DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: &DefaultResponseHeaderTimeout,
		IdleConnTimeout:       &DefaultIdleConnTimeout,
	}

	if cfg == nil {
		return defaultCfg, nil
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

	cfgs := make([]*Config, 0, len(filtered.Configurations)+1)
	cfgs = append(cfgs, defaultCfg)
	for _, entry := range filtered.Configurations {
		var config Config
		if err := Scheme.Convert(entry, &config); err != nil {
			return nil, fmt.Errorf("failed to decode http config: %w", err)
		}
		cfgs = append(cfgs, &config)
	}

	return Merge(cfgs...), nil
}

// Merge merges the provided configs into a single config.
// The last explicitly set field wins.
func Merge(configs ...*Config) *Config {
	if len(configs) == 0 {
		return nil
	}

	merged := &Config{Type: runtime.NewType(ConfigType, Version)}
	for _, config := range configs {
		if config.Timeout != nil {
			merged.Timeout = config.Timeout
		}
		if config.TCPDialTimeout != nil {
			merged.TCPDialTimeout = config.TCPDialTimeout
		}
		if config.TCPKeepAlive != nil {
			merged.TCPKeepAlive = config.TCPKeepAlive
		}
		if config.TLSHandshakeTimeout != nil {
			merged.TLSHandshakeTimeout = config.TLSHandshakeTimeout
		}
		if config.ResponseHeaderTimeout != nil {
			merged.ResponseHeaderTimeout = config.ResponseHeaderTimeout
		}
		if config.IdleConnTimeout != nil {
			merged.IdleConnTimeout = config.IdleConnTimeout
		}
	}

	return merged
}
