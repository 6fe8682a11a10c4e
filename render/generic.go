package render

import (
	"context"
	"encoding/json"
	"fmt"
)

// Generic renders any widget descriptor by projecting its type and
// configuration directly into an element, without interpreting either.
// Install it as the registry default to render arbitrary pages for clients
// that bring their own component semantics.
type Generic struct{}

func (Generic) Render(_ context.Context, rc RenderContext) (*Element, error) {
	attrs := map[string]any{}
	if len(rc.Descriptor.Props) > 0 {
		var props map[string]any
		if err := json.Unmarshal(rc.Descriptor.Props, &props); err != nil {
			return nil, fmt.Errorf("decoding props: %w", err)
		}
		for k, v := range props {
			attrs[k] = v
		}
	}
	if len(rc.Descriptor.Bindings) > 0 {
		var bindings any
		if err := json.Unmarshal(rc.Descriptor.Bindings, &bindings); err != nil {
			return nil, fmt.Errorf("decoding bindings: %w", err)
		}
		attrs["bindings"] = bindings
	}
	if len(rc.Descriptor.Events) > 0 {
		var events any
		if err := json.Unmarshal(rc.Descriptor.Events, &events); err != nil {
			return nil, fmt.Errorf("decoding events: %w", err)
		}
		attrs["events"] = events
	}
	attrs["id"] = rc.Descriptor.ID
	return &Element{Component: rc.Descriptor.Type, Attrs: attrs}, nil
}
