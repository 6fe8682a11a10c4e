package cache_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openportal.dev/openportal/cli/cmd/internal/test"
)

// populatedCache fetches a page into a leveldb-backed cache and returns the
// config file selecting that cache.
func populatedCache(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v7"`)
		fmt.Fprint(w, `{"id": "dashboard", "version": "2.0.1", "layout": {"kind": "grid"}, "widgets": []}`)
	}))
	t.Cleanup(server.Close)

	tmp := t.TempDir()
	configFile := filepath.Join(tmp, "portal.yaml")
	configYAML := fmt.Sprintf(`
type: generic.config.openportal.dev/v1
configurations:
  - type: cache.config.openportal.dev/v1
    backend: leveldb
    path: %q
`, filepath.Join(tmp, "cache"))
	require.NoError(t, os.WriteFile(configFile, []byte(configYAML), 0o600))

	_, err := test.Portal(t,
		test.WithArgs("get", "page", "dashboard", "--origin", server.URL, "--config", configFile),
		test.WithOutput(new(bytes.Buffer)),
	)
	require.NoError(t, err)
	return configFile
}

func TestCacheStats(t *testing.T) {
	configFile := populatedCache(t)
	result := new(bytes.Buffer)

	_, err := test.Portal(t,
		test.WithArgs("cache", "stats", "--config", configFile),
		test.WithOutput(result),
	)
	require.NoError(t, err)

	output := result.String()
	assert.Contains(t, output, "PAGE")
	assert.Contains(t, output, "dashboard")
	assert.Contains(t, output, "2.0.1")
	assert.Contains(t, output, `"v7"`)
	assert.Contains(t, output, "fresh for")
}

func TestCacheClearSelected(t *testing.T) {
	configFile := populatedCache(t)
	result := new(bytes.Buffer)

	_, err := test.Portal(t,
		test.WithArgs("cache", "clear", "dashboard", "other", "--config", configFile),
		test.WithOutput(result),
	)
	require.NoError(t, err)
	assert.Contains(t, result.String(), "cleared 1 of 2 requested page(s)")

	result.Reset()
	_, err = test.Portal(t,
		test.WithArgs("cache", "stats", "--config", configFile),
		test.WithOutput(result),
	)
	require.NoError(t, err)
	assert.Contains(t, result.String(), "the cache holds no entries")
}

func TestCacheClearAll(t *testing.T) {
	configFile := populatedCache(t)
	result := new(bytes.Buffer)

	_, err := test.Portal(t,
		test.WithArgs("cache", "clear", "--config", configFile),
		test.WithOutput(result),
	)
	require.NoError(t, err)
	assert.Contains(t, result.String(), "cleared 1 cached page(s)")
}

func TestCacheStatsEmptyStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("PORTAL_CONFIG", "")

	result := new(bytes.Buffer)
	_, err := test.Portal(t,
		test.WithArgs("cache", "stats"),
		test.WithOutput(result),
	)
	require.NoError(t, err)
	assert.Contains(t, result.String(), "the cache holds no entries")
}
