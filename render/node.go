package render

import (
	"encoding/json"
	"fmt"

	"openportal.dev/openportal/descriptor"
)

// State is the lifecycle position of a widget instance in a resolved tree.
type State string

const (
	// StateUnrendered marks a node that has not been projected yet.
	StateUnrendered State = "unrendered"
	// StateRendered marks a node carrying a valid element.
	StateRendered State = "rendered"
	// StateErrored marks a node whose widget failed. It stays errored until
	// an explicit Reset; rerendering never retries it on its own.
	StateErrored State = "errored"
)

// PageNodeType is the type of the synthetic root node wrapping a page's
// widgets.
const PageNodeType = "page"

// Node is one widget instance in a resolved UI tree.
type Node struct {
	// ID mirrors the widget descriptor's id; for the root node it is the
	// page id.
	ID string `json:"id"`
	// Type mirrors the widget descriptor's type.
	Type string `json:"type"`
	// State reports whether the node rendered, failed, or awaits rendering.
	State State `json:"state"`
	// Element is the node's own projection, exclusive of children. For
	// errored nodes it is a diagnostic stand-in.
	Element *Element `json:"element,omitempty"`
	// Diag carries failure detail for errored nodes. In production mode it
	// is reduced to a generic message.
	Diag *Diagnostic `json:"diag,omitempty"`
	// Children are the nodes of the child descriptors, in configuration
	// order. A parent's failure leaves them untouched.
	Children []*Node `json:"children,omitempty"`

	pageID     string
	path       string
	descriptor *descriptor.Widget
	layout     json.RawMessage
}

// Path locates the node in the page tree, page id first.
func (n *Node) Path() string {
	return n.path
}

// Reset returns the node to the unrendered state so that the next rerender
// attempts it again. This is the only way back from an errored state;
// rendering never retries automatically.
func (n *Node) Reset() {
	n.State = StateUnrendered
	n.Element = nil
	n.Diag = nil
}

// ElementTree assembles the full element tree of the subtree rooted at this
// node, stitching child elements under their parents. The tree is built
// fresh on every call, so it reflects nodes rerendered after a Reset;
// element attributes are shared with the nodes, not copied.
func (n *Node) ElementTree() *Element {
	if n.Element == nil {
		return nil
	}
	tree := &Element{
		Component: n.Element.Component,
		Attrs:     n.Element.Attrs,
	}
	for _, child := range n.Children {
		if childTree := child.ElementTree(); childTree != nil {
			tree.Children = append(tree.Children, childTree)
		}
	}
	return tree
}

// Walk visits the node and all descendants depth first, parents before
// children. Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Diagnostic describes why a node is errored.
type Diagnostic struct {
	// Message is the failure description shown in diagnostic output. In
	// production mode it is a generic text carrying no internal detail.
	Message string `json:"message"`
	// Path locates the failing widget. Empty in production mode.
	Path string `json:"path,omitempty"`
	// Stack is the captured call stack of a panicking widget. Empty in
	// production mode and for plain errors.
	Stack string `json:"stack,omitempty"`
}

// WidgetError describes a contained widget failure as reported to the error
// callback. Unlike user-facing diagnostics it always carries the full
// detail, regardless of mode.
type WidgetError struct {
	// PageID identifies the page being rendered.
	PageID string
	// WidgetID and WidgetType identify the failing widget instance.
	WidgetID   string
	WidgetType string
	// Path locates the widget in the page tree.
	Path string
	// Err is the rendering failure, with panics converted to errors.
	Err error
}

func (e *WidgetError) Error() string {
	return fmt.Sprintf("widget %s (type %s) at %s failed to render: %v", e.WidgetID, e.WidgetType, e.Path, e.Err)
}

func (e *WidgetError) Unwrap() error {
	return e.Err
}
