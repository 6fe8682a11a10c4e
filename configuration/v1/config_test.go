package v1

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openportal.dev/openportal/runtime"
)

const configFile = `type: generic.config.openportal.dev/v1
configurations:
  - type: cache.config.openportal.dev/v1
    backend: memory
    defaultTTL: 30m
  - type: logging.config.openportal.dev/v1
    settings:
      defaultLevel: info
`

func TestDecodeAndFilter(t *testing.T) {
	r := require.New(t)

	config, err := Decode([]byte(configFile))
	r.NoError(err)
	r.Len(config.Configurations, 2)

	filtered, err := Filter(config, &FilterOptions{
		ConfigTypes: []runtime.Type{runtime.NewType("cache.config.openportal.dev", "v1")},
	})
	r.NoError(err)
	r.Len(filtered.Configurations, 1)
	r.Equal("cache.config.openportal.dev/v1", filtered.Configurations[0].GetType().String())
}

func TestDecodeRejectsForeignRootType(t *testing.T) {
	_, err := Decode([]byte("type: something.else/v1\nconfigurations: []\n"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), ".portalconfig")
	r.NoError(os.WriteFile(path, []byte(configFile), 0o600))

	config, err := LoadFile(path)
	r.NoError(err)
	r.Len(config.Configurations, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent"))
	r.Error(err)
}

func TestFlatMapFlattensNestedConfigs(t *testing.T) {
	r := require.New(t)

	nested, err := Decode([]byte(`type: generic.config.openportal.dev/v1
configurations:
  - type: generic.config.openportal.dev/v1
    configurations:
      - type: cache.config.openportal.dev/v1
        backend: lru
  - type: logging.config.openportal.dev/v1
    settings: {}
`))
	r.NoError(err)

	other, err := Decode([]byte(`type: generic.config.openportal.dev/v1
configurations:
  - type: http.config.openportal.dev/v1
    timeout: 10s
`))
	r.NoError(err)

	merged, err := FlatMap(nested, other)
	r.NoError(err)
	r.Len(merged.Configurations, 3)
	r.Equal("cache.config.openportal.dev/v1", merged.Configurations[0].GetType().String())
	r.Equal("logging.config.openportal.dev/v1", merged.Configurations[1].GetType().String())
	r.Equal("http.config.openportal.dev/v1", merged.Configurations[2].GetType().String())
}

func TestDurationRoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"90s"`)))
	assert.Equal(t, 90*time.Second, d.Value())

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))

	require.NoError(t, d.UnmarshalJSON([]byte(`1000000000`)))
	assert.Equal(t, time.Second, d.Value())

	require.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	require.Error(t, d.UnmarshalJSON([]byte(`true`)))
}
