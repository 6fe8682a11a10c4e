package v1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loggingv1 "openportal.dev/openportal/configuration/logging/v1"
	genericv1 "openportal.dev/openportal/configuration/v1"
)

func TestLookupConfig(t *testing.T) {
	t.Run("decodes default level and rules", func(t *testing.T) {
		yamlCfg := `
type: generic.config.openportal.dev/v1
configurations:
  - type: logging.config.openportal.dev/v1
    settings:
      defaultLevel: warn
      rules:
        - level: debug
          conditions:
            - realm: loader
        - level: error
          conditions:
            - realm: cache.leveldb
`
		generic, err := genericv1.Decode([]byte(yamlCfg))
		require.NoError(t, err)

		cfg, err := loggingv1.LookupConfig(generic)
		require.NoError(t, err)

		assert.Equal(t, "warn", cfg.Settings.DefaultLevel)
		require.Len(t, cfg.Settings.Rules, 2)
		assert.Equal(t, "debug", cfg.Settings.Rules[0].Level)
		assert.Equal(t, "loader", cfg.Settings.Rules[0].Conditions[0].Realm)
	})

	t.Run("nil central config yields nil", func(t *testing.T) {
		cfg, err := loggingv1.LookupConfig(nil)
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})
}

func TestMerge(t *testing.T) {
	t.Run("last default level wins", func(t *testing.T) {
		merged := loggingv1.Merge(
			&loggingv1.Config{Settings: loggingv1.Settings{DefaultLevel: "info"}},
			&loggingv1.Config{Settings: loggingv1.Settings{DefaultLevel: "debug"}},
		)
		assert.Equal(t, "debug", merged.Settings.DefaultLevel)
	})

	t.Run("empty default level does not clear earlier one", func(t *testing.T) {
		merged := loggingv1.Merge(
			&loggingv1.Config{Settings: loggingv1.Settings{DefaultLevel: "info"}},
			&loggingv1.Config{},
		)
		assert.Equal(t, "info", merged.Settings.DefaultLevel)
	})

	t.Run("rules accumulate without duplicates", func(t *testing.T) {
		rule := loggingv1.Rule{
			Level:      "debug",
			Conditions: []loggingv1.Condition{{Realm: "loader"}},
		}
		merged := loggingv1.Merge(
			&loggingv1.Config{Settings: loggingv1.Settings{Rules: []loggingv1.Rule{rule}}},
			&loggingv1.Config{Settings: loggingv1.Settings{Rules: []loggingv1.Rule{rule}}},
		)
		assert.Len(t, merged.Settings.Rules, 1)
	})
}
