package v1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resolversv1 "openportal.dev/openportal/configuration/resolvers/v1"
	genericv1 "openportal.dev/openportal/configuration/v1"
	specv1 "openportal.dev/openportal/repository/spec/v1"
)

const resolversYAML = `
type: generic.config.openportal.dev/v1
configurations:
  - type: resolvers.config.openportal.dev/v1
    resolvers:
      - pagePattern: admin/*
        priority: 10
        origin:
          type: HTTPOrigin/v1
          baseUrl: https://admin.portal.example.com
      - pagePattern: "*"
        origin:
          type: HTTPOrigin/v1
          baseUrl: https://portal.example.com
`

func TestLookupConfig(t *testing.T) {
	t.Run("decodes patterns, priorities and origins", func(t *testing.T) {
		generic, err := genericv1.Decode([]byte(resolversYAML))
		require.NoError(t, err)

		cfg, err := resolversv1.LookupConfig(generic)
		require.NoError(t, err)
		require.Len(t, cfg.Resolvers, 2)

		assert.Equal(t, "admin/*", cfg.Resolvers[0].PagePattern)
		assert.Equal(t, 10, cfg.Resolvers[0].Priority)
		assert.Equal(t, "*", cfg.Resolvers[1].PagePattern)
		assert.Zero(t, cfg.Resolvers[1].Priority)

		var origin specv1.HTTPOrigin
		require.NoError(t, specv1.Scheme.Convert(cfg.Resolvers[0].Origin, &origin))
		assert.Equal(t, "https://admin.portal.example.com", origin.BaseURL)
	})

	t.Run("concatenates entries across configurations", func(t *testing.T) {
		yamlCfg := `
type: generic.config.openportal.dev/v1
configurations:
  - type: resolvers.config.openportal.dev/v1
    resolvers:
      - pagePattern: reports/*
        origin:
          type: HTTPOrigin/v1
          baseUrl: https://reports.example.com
  - type: resolvers.config.openportal.dev/v1
    resolvers:
      - pagePattern: "*"
        origin:
          type: HTTPOrigin/v1
          baseUrl: https://portal.example.com
`
		generic, err := genericv1.Decode([]byte(yamlCfg))
		require.NoError(t, err)

		cfg, err := resolversv1.LookupConfig(generic)
		require.NoError(t, err)
		require.Len(t, cfg.Resolvers, 2)
		assert.Equal(t, "reports/*", cfg.Resolvers[0].PagePattern)
		assert.Equal(t, "*", cfg.Resolvers[1].PagePattern)
	})

	t.Run("nil central config yields empty resolver list", func(t *testing.T) {
		cfg, err := resolversv1.LookupConfig(nil)
		require.NoError(t, err)
		assert.Empty(t, cfg.Resolvers)
	})
}

func TestConfig_DeepCopyTyped(t *testing.T) {
	generic, err := genericv1.Decode([]byte(resolversYAML))
	require.NoError(t, err)

	cfg, err := resolversv1.LookupConfig(generic)
	require.NoError(t, err)

	copied, ok := cfg.DeepCopyTyped().(*resolversv1.Config)
	require.True(t, ok)
	require.Len(t, copied.Resolvers, 2)

	copied.Resolvers[0].PagePattern = "changed/*"
	copied.Resolvers[0].Origin.Data[0] = 'X'

	assert.Equal(t, "admin/*", cfg.Resolvers[0].PagePattern)
	assert.NotEqual(t, byte('X'), cfg.Resolvers[0].Origin.Data[0])
}
