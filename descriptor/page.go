// Package descriptor defines the page configuration model served by portal
// origins and the validation applied to it before it may be cached or
// rendered.
package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PageConfig is the declarative description of a single portal page: which
// widgets it contains, how they are arranged, and how they are wired to data.
// Beyond the validated fields the payload is treated as opaque so that origin
// and client can evolve the format independently.
type PageConfig struct {
	// ID is the unique identifier of the page.
	ID string `json:"id"`
	// Version of the page configuration, following semantic versioning.
	Version string `json:"version"`
	// Layout is the structured layout descriptor for the page. It must be a
	// JSON object; its inner structure is not interpreted here.
	Layout json.RawMessage `json:"layout,omitempty"`
	// Widgets is the widget tree of the page. It may be empty, but a page
	// without the field is invalid.
	Widgets []Widget `json:"widgets,omitempty"`
}

// Widget is a single node in the widget tree of a page.
type Widget struct {
	// ID is unique within its page.
	ID string `json:"id"`
	// Type selects the widget implementation, e.g. "Button" or "DataGrid".
	Type string `json:"type"`
	// Props carries per-instance configuration. Interpreted only by the
	// widget implementation the type resolves to.
	Props json.RawMessage `json:"props,omitempty"`
	// Bindings declares data bindings of the widget.
	Bindings json.RawMessage `json:"bindings,omitempty"`
	// Events declares event handlers of the widget.
	Events json.RawMessage `json:"events,omitempty"`
	// Children are nested widgets.
	Children []Widget `json:"children,omitempty"`
}

// Decode parses a serialized page configuration. A payload that is not valid
// JSON is an ErrInvalidConfig kind; structural validation is a separate step,
// see Validate.
func Decode(data []byte) (*PageConfig, error) {
	var config PageConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: could not decode page config: %w", ErrInvalidConfig, err)
	}
	return &config, nil
}

func (c *PageConfig) DeepCopy() *PageConfig {
	if c == nil {
		return nil
	}
	out := &PageConfig{
		ID:      c.ID,
		Version: c.Version,
		Layout:  bytes.Clone(c.Layout),
	}
	if c.Widgets != nil {
		out.Widgets = make([]Widget, len(c.Widgets))
		for i := range c.Widgets {
			out.Widgets[i] = *c.Widgets[i].DeepCopy()
		}
	}
	return out
}

func (w *Widget) DeepCopy() *Widget {
	if w == nil {
		return nil
	}
	out := &Widget{
		ID:       w.ID,
		Type:     w.Type,
		Props:    bytes.Clone(w.Props),
		Bindings: bytes.Clone(w.Bindings),
		Events:   bytes.Clone(w.Events),
	}
	if w.Children != nil {
		out.Children = make([]Widget, len(w.Children))
		for i := range w.Children {
			out.Children[i] = *w.Children[i].DeepCopy()
		}
	}
	return out
}

// WidgetCount returns the number of widgets in the page, including nested
// children.
func (c *PageConfig) WidgetCount() int {
	count := 0
	var walk func(widgets []Widget)
	walk = func(widgets []Widget) {
		count += len(widgets)
		for i := range widgets {
			walk(widgets[i].Children)
		}
	}
	walk(c.Widgets)
	return count
}
