package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"openportal.dev/openportal/descriptor"
)

var logger = slog.With(slog.String("realm", "repository"))

// DefaultPagePath is the request path prefix of the page configuration
// endpoint.
const DefaultPagePath = "/ui/pages/"

// HTTPRepository fetches page configurations over HTTP(S). Requests carry a
// bearer credential obtained from an externally supplied token source; the
// repository never acquires or refreshes tokens itself.
type HTTPRepository struct {
	baseURL  *url.URL
	pagePath string
	client   *http.Client
	tokens   oauth2.TokenSource
}

var _ PageRepository = (*HTTPRepository)(nil)

type HTTPRepositoryOption func(*HTTPRepository)

// WithHTTPClient sets the HTTP client used for fetches.
func WithHTTPClient(client *http.Client) HTTPRepositoryOption {
	return func(r *HTTPRepository) {
		r.client = client
	}
}

// WithTokenSource sets the source of bearer credentials attached to every
// request.
func WithTokenSource(tokens oauth2.TokenSource) HTTPRepositoryOption {
	return func(r *HTTPRepository) {
		r.tokens = tokens
	}
}

// WithPagePath overrides the request path prefix of the page endpoint.
func WithPagePath(pagePath string) HTTPRepositoryOption {
	return func(r *HTTPRepository) {
		r.pagePath = pagePath
	}
}

// NewHTTPRepository creates a repository rooted at baseURL.
func NewHTTPRepository(baseURL string, opts ...HTTPRepositoryOption) (*HTTPRepository, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid origin base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid origin base URL %q: scheme and host are required", baseURL)
	}
	repo := &HTTPRepository{
		baseURL:  parsed,
		pagePath: DefaultPagePath,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

func (r *HTTPRepository) GetPage(ctx context.Context, pageID string, opts ...GetOption) (*Page, error) {
	options := &GetOptions{}
	for _, opt := range opts {
		opt(options)
	}

	endpoint := r.pageURL(pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request for page %q: %w", pageID, err)
	}
	req.Header.Set("Accept", "application/json")
	if options.ETag != "" {
		// the validator is opaque and sent back verbatim
		req.Header.Set("If-None-Match", options.ETag)
	}
	if r.tokens != nil {
		token, err := r.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: could not obtain credential for page %q: %w", ErrForbidden, pageID, err)
		}
		token.SetAuthHeader(req)
	}

	done := logOperation(ctx, "fetch page",
		slog.String("page", pageID),
		slog.Bool("conditional", options.ETag != ""),
	)
	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// cancellation is the caller's doing, not an origin failure
			err = fmt.Errorf("fetching page %q: %w", pageID, err)
		} else {
			err = fmt.Errorf("%w: fetching page %q: %w", ErrNetwork, pageID, err)
		}
		done(err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	page, err := r.handleResponse(resp, pageID, options)
	done(err)
	return page, err
}

func (r *HTTPRepository) handleResponse(resp *http.Response, pageID string, options *GetOptions) (*Page, error) {
	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading page %q: %w", ErrNetwork, pageID, err)
		}
		config, err := descriptor.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", pageID, err)
		}
		return &Page{
			Config: config,
			Body:   body,
			ETag:   resp.Header.Get("ETag"),
		}, nil

	case http.StatusNotModified:
		etag := resp.Header.Get("ETag")
		if etag == "" {
			etag = options.ETag
		}
		return &Page{ETag: etag, NotModified: true}, nil

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: page %q%s", ErrNotFound, pageID, errorDetail(resp.Body))

	case http.StatusForbidden, http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: page %q%s", ErrForbidden, pageID, errorDetail(resp.Body))

	default:
		return nil, fmt.Errorf("%w: unexpected status %d fetching page %q", ErrNetwork, resp.StatusCode, pageID)
	}
}

func (r *HTTPRepository) pageURL(pageID string) string {
	// the page id is a single path segment, slashes inside it stay escaped
	return r.baseURL.JoinPath(r.pagePath, url.PathEscape(pageID)).String()
}

// errorDetail extracts the message of an origin error payload, best effort.
func errorDetail(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err != nil {
		return ""
	}
	message := payload.Error.Message
	if message == "" {
		message = payload.Message
	}
	if message == "" {
		return ""
	}
	return ": " + message
}

// logOperation is a helper function to log operations with timing and error handling.
func logOperation(ctx context.Context, operation string, fields ...slog.Attr) func(error) {
	start := time.Now()
	attrs := make([]any, 0, len(fields)+1)
	attrs = append(attrs, slog.String("operation", operation))
	for _, field := range fields {
		attrs = append(attrs, field)
	}
	logger := logger.With(attrs...)
	logger.Log(ctx, slog.LevelDebug, "starting operation")
	return func(err error) {
		if err != nil {
			logger.Log(ctx, slog.LevelDebug, "operation failed", slog.Duration("duration", time.Since(start)), slog.String("error", err.Error()))
			return
		}
		logger.Log(ctx, slog.LevelDebug, "operation completed", slog.Duration("duration", time.Since(start)))
	}
}
