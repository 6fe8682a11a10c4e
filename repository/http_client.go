package repository

import (
	"net"
	"net/http"

	httpv1 "openportal.dev/openportal/configuration/http/v1"
)

const defaultUserAgent = "OpenPortal"

// HTTPClientOptions holds configuration for creating an HTTP client.
type HTTPClientOptions struct {
	config    *httpv1.Config
	userAgent string
}

// HTTPClientOption is a functional option for NewHTTPClient.
type HTTPClientOption func(*HTTPClientOptions)

// WithHTTPConfig sets the HTTP configuration (timeouts etc.).
func WithHTTPConfig(cfg *httpv1.Config) HTTPClientOption {
	return func(o *HTTPClientOptions) {
		o.config = cfg
	}
}

// WithUserAgent sets the User-Agent header for HTTP requests.
func WithUserAgent(userAgent string) HTTPClientOption {
	return func(o *HTTPClientOptions) {
		o.userAgent = userAgent
	}
}

// userAgentTransport wraps an http.RoundTripper and injects a User-Agent header.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// NewHTTPClient creates a new HTTP client with the given options applied.
func NewHTTPClient(opts ...HTTPClientOption) *http.Client {
	options := &HTTPClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	baseTransport := http.DefaultTransport

	if options.config != nil {
		baseTransport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   options.config.TCPDialTimeout.Value(),
				KeepAlive: options.config.TCPKeepAlive.Value(),
			}).DialContext,
			TLSHandshakeTimeout:   options.config.TLSHandshakeTimeout.Value(),
			ResponseHeaderTimeout: options.config.ResponseHeaderTimeout.Value(),
			IdleConnTimeout:       options.config.IdleConnTimeout.Value(),
		}
	}

	userAgent := defaultUserAgent
	if options.userAgent != "" {
		userAgent = options.userAgent
	}

	httpClient := &http.Client{
		Transport: &userAgentTransport{
			base:      baseTransport,
			userAgent: userAgent,
		},
		Timeout: 0,
	}

	if options.config != nil {
		httpClient.Timeout = options.config.Timeout.Value()
	}

	return httpClient
}
