package render

import (
	"context"

	"openportal.dev/openportal/descriptor"
)

// RenderContext carries everything a widget implementation needs to produce
// its output.
type RenderContext struct {
	// PageID identifies the page being rendered.
	PageID string
	// Descriptor is the widget's node in the page configuration tree.
	// Implementations must treat it as read-only.
	Descriptor *descriptor.Widget
	// Props is a fresh instance of the props prototype registered for the
	// widget type, decoded from the descriptor. Nil when the type
	// registered no prototype; the raw payload then remains available on
	// the Descriptor.
	Props any
	// Children are the rendered elements of the child descriptors, in
	// configuration order and with diagnostics included. They are provided
	// for inspection; attaching children to the element tree is the
	// resolver's job, not the widget's.
	Children []*Element
	// Path locates the widget in the page tree, page id first, for example
	// "home/sidebar/nav".
	Path string
}

// Widget produces the UI projection of one widget descriptor.
//
// Render must not mutate the descriptor and must not include child elements
// in the returned element. A returned error, like a panic, is contained by
// the resolver and replaces only this widget's output.
type Widget interface {
	Render(ctx context.Context, rc RenderContext) (*Element, error)
}

// WidgetFunc adapts a function to the Widget interface.
type WidgetFunc func(ctx context.Context, rc RenderContext) (*Element, error)

func (f WidgetFunc) Render(ctx context.Context, rc RenderContext) (*Element, error) {
	return f(ctx, rc)
}
