// Package repository provides access to origins serving page configurations.
package repository

import (
	"context"
	"errors"

	"openportal.dev/openportal/descriptor"
)

var (
	// ErrNotFound indicates the origin has no configuration for the page.
	ErrNotFound = errors.New("page not found")
	// ErrForbidden indicates the caller is not permitted to read the page.
	ErrForbidden = errors.New("page access forbidden")
	// ErrNetwork indicates a transport-level failure or an origin response
	// outside the protocol contract.
	ErrNetwork = errors.New("origin fetch failed")
)

// Page is the result of fetching a page configuration from an origin.
type Page struct {
	// Config is the decoded page configuration. Nil when NotModified.
	Config *descriptor.PageConfig
	// Body is the serialized configuration exactly as received from the
	// origin. Nil when NotModified.
	Body []byte
	// ETag is the entity validator of this representation, verbatim as
	// received including any quoting. Empty when the origin sent none.
	ETag string
	// NotModified reports that the origin confirmed the validator passed via
	// WithETag is still current and sent no body.
	NotModified bool
}

// GetOptions influence a single fetch.
type GetOptions struct {
	// ETag, when non-empty, makes the fetch conditional: the origin may
	// answer NotModified instead of sending a body.
	ETag string
}

type GetOption func(*GetOptions)

// WithETag attaches the validator of a previously fetched representation.
func WithETag(etag string) GetOption {
	return func(o *GetOptions) {
		o.ETag = etag
	}
}

// PageRepository fetches page configurations from an origin.
type PageRepository interface {
	// GetPage retrieves the configuration for the given page. Failure kinds
	// are discriminable via errors.Is against ErrNotFound, ErrForbidden,
	// ErrNetwork and descriptor.ErrInvalidConfig; context cancellation
	// surfaces as the context's error.
	GetPage(ctx context.Context, pageID string, opts ...GetOption) (*Page, error)
}
