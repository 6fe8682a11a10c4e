// Package v1 defines the serializable origin specifications understood by the
// portal. Origin specs appear in resolver configurations and are decoded
// through the package scheme.
package v1

import (
	"openportal.dev/openportal/runtime"
)

const (
	// HTTPOriginType is the type identifier of HTTP(S) page configuration
	// origins.
	HTTPOriginType = "HTTPOrigin"
	Version        = "v1"
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&HTTPOrigin{},
		runtime.NewType(HTTPOriginType, Version),
		runtime.NewUnversionedType(HTTPOriginType),
	)
}

// HTTPOrigin describes an HTTP(S) origin serving page configurations.
//
//   - type: HTTPOrigin/v1
//     baseUrl: https://portal.example.com
//     pagePath: /ui/pages/
type HTTPOrigin struct {
	Type runtime.Type `json:"type"`
	// BaseURL of the origin, including scheme and host.
	BaseURL string `json:"baseUrl"`
	// PagePath optionally overrides the page endpoint path prefix.
	PagePath string `json:"pagePath,omitempty"`
}

var _ runtime.Typed = (*HTTPOrigin)(nil)

func (o *HTTPOrigin) GetType() runtime.Type {
	return o.Type
}

func (o *HTTPOrigin) SetType(typ runtime.Type) {
	o.Type = typ
}

func (o *HTTPOrigin) DeepCopyTyped() runtime.Typed {
	copied := *o
	return &copied
}
