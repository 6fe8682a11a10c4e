package repository_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpv1 "openportal.dev/openportal/configuration/http/v1"
	genericv1 "openportal.dev/openportal/configuration/v1"
	"openportal.dev/openportal/repository"
)

func TestNewHTTPClient(t *testing.T) {
	t.Run("disables timeout when config has zero timeout", func(t *testing.T) {
		r := require.New(t)
		cfg := &httpv1.Config{
			Timeout: genericv1.NewDuration(0),
		}
		client := repository.NewHTTPClient(repository.WithHTTPConfig(cfg))
		r.Equal(time.Duration(0), client.Timeout)
	})

	t.Run("applies timeout when set", func(t *testing.T) {
		r := require.New(t)
		cfg := &httpv1.Config{
			Timeout: genericv1.NewDuration(5 * time.Minute),
		}
		client := repository.NewHTTPClient(repository.WithHTTPConfig(cfg))
		r.Equal(5*time.Minute, client.Timeout)
	})

	t.Run("sends default user agent", func(t *testing.T) {
		r := require.New(t)
		var seen string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			seen = req.Header.Get("User-Agent")
		}))
		t.Cleanup(server.Close)

		client := repository.NewHTTPClient()
		resp, err := client.Get(server.URL)
		r.NoError(err)
		r.NoError(resp.Body.Close())
		r.Equal("OpenPortal", seen)
	})

	t.Run("sends custom user agent", func(t *testing.T) {
		r := require.New(t)
		var seen string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			seen = req.Header.Get("User-Agent")
		}))
		t.Cleanup(server.Close)

		client := repository.NewHTTPClient(repository.WithUserAgent("portal-cli/2"))
		resp, err := client.Get(server.URL)
		r.NoError(err)
		r.NoError(resp.Body.Close())
		r.Equal("portal-cli/2", seen)
	})
}
