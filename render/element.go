// Package render projects validated page configurations into UI trees.
//
// A Registry maps widget type names to implementations; a Resolver walks the
// widget descriptor tree and renders every node inside an isolation
// boundary, so that one failing widget never takes down its siblings or the
// page. Unknown widget types degrade to a diagnostic placeholder instead of
// aborting. Rendering is a pure projection: the descriptor tree is never
// mutated, and rendering the same tree twice yields equivalent output.
package render

import "log/slog"

var logger = slog.With(slog.String("realm", "render"))

// Components emitted by the resolver itself rather than a widget
// implementation.
const (
	// ComponentPage is the synthetic root element wrapping a page.
	ComponentPage = "portal.page"
	// ComponentPlaceholder stands in for a widget type no implementation is
	// registered for.
	ComponentPlaceholder = "portal.placeholder"
	// ComponentError replaces the output of a widget whose rendering
	// failed.
	ComponentError = "portal.error"
)

// Element is one node of the abstract UI tree produced by rendering. It is
// deliberately free of widget-specific structure so that thin clients can
// map components to native controls and serialize the tree as JSON.
type Element struct {
	// Component names the UI component a client should mount.
	Component string `json:"component"`
	// Attrs are the component's resolved attributes.
	Attrs map[string]any `json:"attrs,omitempty"`
	// Children are nested elements in configuration order.
	Children []*Element `json:"children,omitempty"`
}
