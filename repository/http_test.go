package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"openportal.dev/openportal/descriptor"
)

const pageBody = `{"id":"home","version":"1.0.0","layout":{"type":"grid"},"widgets":[]}`

func newOrigin(t *testing.T, handler http.HandlerFunc) *HTTPRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	repo, err := NewHTTPRepository(server.URL)
	require.NoError(t, err)
	return repo
}

func TestGetPageOK(t *testing.T) {
	r := require.New(t)

	var gotPath string
	repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(pageBody))
	})

	page, err := repo.GetPage(t.Context(), "home")
	r.NoError(err)
	r.Equal("/ui/pages/home", gotPath)
	r.Equal(`"v1"`, page.ETag)
	r.False(page.NotModified)
	r.Equal("home", page.Config.ID)
	r.JSONEq(pageBody, string(page.Body))
}

func TestGetPageSendsValidatorVerbatim(t *testing.T) {
	r := require.New(t)

	var gotIfNoneMatch string
	repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
		gotIfNoneMatch = req.Header.Get("If-None-Match")
		w.WriteHeader(http.StatusNotModified)
	})

	page, err := repo.GetPage(t.Context(), "home", WithETag(`"v1"`))
	r.NoError(err)
	r.Equal(`"v1"`, gotIfNoneMatch)
	r.True(page.NotModified)
	r.Nil(page.Config)
	r.Equal(`"v1"`, page.ETag)
}

func TestGetPageUnconditionalOmitsValidator(t *testing.T) {
	repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
		if _, sent := req.Header["If-None-Match"]; sent {
			t.Error("unexpected If-None-Match header on unconditional request")
		}
		w.Write([]byte(pageBody))
	})

	_, err := repo.GetPage(t.Context(), "home")
	require.NoError(t, err)
}

func TestGetPageErrorKinds(t *testing.T) {
	for _, tc := range []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"error":{"code":"not_found","message":"no such page"}}`, wantErr: ErrNotFound},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":{"code":"forbidden","message":"missing role"}}`, wantErr: ErrForbidden},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantErr: ErrForbidden},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantErr: ErrNetwork},
		{name: "unexpected status", status: http.StatusNoContent, body: ``, wantErr: ErrNetwork},
	} {
		t.Run(tc.name, func(t *testing.T) {
			repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			page, err := repo.GetPage(t.Context(), "home")
			assert.Nil(t, page)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGetPageTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {}))
	repo, err := NewHTTPRepository(server.URL)
	require.NoError(t, err)
	server.Close()

	_, err = repo.GetPage(t.Context(), "home")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestGetPageCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(pageBody))
	})

	_, err := repo.GetPage(ctx, "home")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestGetPageInvalidBody(t *testing.T) {
	repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"id": "broken"`))
	})

	_, err := repo.GetPage(t.Context(), "home")
	assert.ErrorIs(t, err, descriptor.ErrInvalidConfig)
}

func TestGetPageBearerCredential(t *testing.T) {
	var gotAuthorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotAuthorization = req.Header.Get("Authorization")
		w.Write([]byte(pageBody))
	}))
	t.Cleanup(server.Close)

	repo, err := NewHTTPRepository(server.URL,
		WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret-token"})),
	)
	require.NoError(t, err)

	_, err = repo.GetPage(t.Context(), "home")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuthorization)
}

func TestGetPageTokenSourceFailure(t *testing.T) {
	repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(pageBody))
	})
	failing := failingTokenSource{err: errors.New("token service down")}
	repo.tokens = failing

	_, err := repo.GetPage(t.Context(), "home")
	assert.ErrorIs(t, err, ErrForbidden)
}

type failingTokenSource struct {
	err error
}

func (f failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, f.err
}

func TestGetPageEscapesPageID(t *testing.T) {
	var gotPath string
	repo := newOrigin(t, func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.EscapedPath()
		w.Write([]byte(pageBody))
	})

	_, err := repo.GetPage(t.Context(), "reports/q1")
	require.NoError(t, err)
	assert.Equal(t, "/ui/pages/reports%2Fq1", gotPath)
}

func TestNewHTTPRepositoryRejectsBadURL(t *testing.T) {
	_, err := NewHTTPRepository("not-a-url")
	assert.Error(t, err)

	_, err = NewHTTPRepository("://missing-scheme")
	assert.Error(t, err)
}

func TestWithPagePath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		w.Write([]byte(pageBody))
	}))
	t.Cleanup(server.Close)

	repo, err := NewHTTPRepository(server.URL, WithPagePath("/api/v2/pages/"))
	require.NoError(t, err)

	_, err = repo.GetPage(t.Context(), "home")
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/pages/home", gotPath)
}
