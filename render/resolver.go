package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"openportal.dev/openportal/descriptor"
)

// productionDiagnostic is the only failure detail surfaced in rendered
// output when the resolver runs in production mode.
const productionDiagnostic = "This section could not be displayed. Please contact support."

// Resolver renders widget descriptor trees against a registry.
//
// Every widget runs inside an isolation boundary: an error or panic marks
// that node errored and substitutes a diagnostic element, while siblings,
// children, and the page itself render normally. A Resolver is stateless
// apart from its configuration and safe for concurrent use; the node trees
// it produces are not.
type Resolver struct {
	registry   *Registry
	onError    func(*WidgetError)
	production bool
}

// ResolverOption configures a Resolver at construction time.
type ResolverOption func(*Resolver)

// WithOnError registers a callback invoked for every contained widget
// failure. It always receives full detail, independent of the resolver's
// mode, so error reporting keeps working when user-facing diagnostics are
// redacted.
func WithOnError(fn func(*WidgetError)) ResolverOption {
	return func(r *Resolver) {
		r.onError = fn
	}
}

// WithProductionMode reduces diagnostics in rendered output to a generic
// message without widget identity, path, or stack detail. The default is
// development mode, which surfaces all of it.
func WithProductionMode() ResolverOption {
	return func(r *Resolver) {
		r.production = true
	}
}

// NewResolver creates a resolver rendering with the given registry.
func NewResolver(registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve renders a page configuration into a node tree. The returned root
// is a synthetic page node wrapping the top-level widgets; widget failures
// are contained in their nodes and never fail the resolve itself. The tree
// keeps references into the configuration, which must not be mutated while
// the tree is in use.
func (r *Resolver) Resolve(ctx context.Context, config *descriptor.PageConfig) (*Node, error) {
	if config == nil {
		return nil, errors.New("page config must not be nil")
	}
	root := &Node{
		ID:     config.ID,
		Type:   PageNodeType,
		State:  StateUnrendered,
		pageID: config.ID,
		path:   config.ID,
		layout: config.Layout,
	}
	for i := range config.Widgets {
		root.Children = append(root.Children, buildNode(config.ID, config.ID, &config.Widgets[i]))
	}
	if err := r.Rerender(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}

func buildNode(pageID, parentPath string, widget *descriptor.Widget) *Node {
	node := &Node{
		ID:         widget.ID,
		Type:       widget.Type,
		State:      StateUnrendered,
		pageID:     pageID,
		path:       parentPath + "/" + widget.ID,
		descriptor: widget,
	}
	for i := range widget.Children {
		node.Children = append(node.Children, buildNode(pageID, node.path, &widget.Children[i]))
	}
	return node
}

// Rerender renders every unrendered node in the subtree, children before
// parents so that a parent observes its children's output. Rendered nodes
// keep their element and errored nodes are skipped; Reset a node to make it
// renderable again. The only error is context cancellation.
func (r *Resolver) Rerender(ctx context.Context, node *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := r.Rerender(ctx, child); err != nil {
			return err
		}
	}
	if node.State != StateUnrendered {
		return nil
	}
	r.renderOne(ctx, node)
	return nil
}

func (r *Resolver) renderOne(ctx context.Context, node *Node) {
	if node.descriptor == nil {
		node.Element = pageElement(node)
		node.State = StateRendered
		return
	}

	widget, ok := r.registry.Lookup(node.Type)
	if !ok {
		widget, ok = r.registry.Default()
	}
	if !ok {
		node.Element = r.placeholderElement(node)
		node.State = StateRendered
		logger.DebugContext(ctx, "no widget registered, rendering placeholder",
			slog.String("page", node.pageID),
			slog.String("widget", node.ID),
			slog.String("type", node.Type))
		return
	}

	rc := RenderContext{
		PageID:     node.pageID,
		Descriptor: node.descriptor,
		Path:       node.path,
	}
	if proto, ok := r.registry.newProps(node.Type); ok {
		if len(node.descriptor.Props) > 0 {
			if err := json.Unmarshal(node.descriptor.Props, proto); err != nil {
				r.fail(ctx, node, fmt.Errorf("decoding props: %w", err))
				return
			}
		}
		rc.Props = proto
	}
	for _, child := range node.Children {
		if tree := child.ElementTree(); tree != nil {
			rc.Children = append(rc.Children, tree)
		}
	}

	element, err := renderWidget(ctx, widget, rc)
	if err == nil && element == nil {
		err = errors.New("widget rendered a nil element")
	}
	if err != nil {
		r.fail(ctx, node, err)
		return
	}
	node.Element = element
	node.State = StateRendered
}

// renderWidget is the isolation boundary around widget implementations. A
// panicking widget surfaces as an error carrying the captured stack.
func renderWidget(ctx context.Context, widget Widget, rc RenderContext) (_ *Element, retErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			retErr = &panicError{value: rec, stack: debug.Stack()}
		}
	}()
	return widget.Render(ctx, rc)
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("widget panicked: %v", e.value)
}

func (r *Resolver) fail(ctx context.Context, node *Node, err error) {
	werr := &WidgetError{
		PageID:     node.pageID,
		WidgetID:   node.ID,
		WidgetType: node.Type,
		Path:       node.path,
		Err:        err,
	}
	logger.ErrorContext(ctx, "widget failed to render",
		slog.String("page", node.pageID),
		slog.String("widget", node.ID),
		slog.String("type", node.Type),
		slog.String("path", node.path),
		slog.String("error", err.Error()))
	if r.onError != nil {
		r.onError(werr)
	}
	diag := r.diagnostic(node, err)
	node.State = StateErrored
	node.Diag = diag
	node.Element = r.errorElement(node, diag)
}

func (r *Resolver) diagnostic(node *Node, err error) *Diagnostic {
	if r.production {
		return &Diagnostic{Message: productionDiagnostic}
	}
	diag := &Diagnostic{
		Message: err.Error(),
		Path:    node.path,
	}
	var pe *panicError
	if errors.As(err, &pe) {
		diag.Stack = string(pe.stack)
	}
	return diag
}

func (r *Resolver) errorElement(node *Node, diag *Diagnostic) *Element {
	if r.production {
		return &Element{
			Component: ComponentError,
			Attrs:     map[string]any{"message": productionDiagnostic},
		}
	}
	return &Element{
		Component: ComponentError,
		Attrs: map[string]any{
			"widgetId":   node.ID,
			"widgetType": node.Type,
			"message":    diag.Message,
		},
	}
}

func (r *Resolver) placeholderElement(node *Node) *Element {
	attrs := map[string]any{"widgetType": node.Type}
	if !r.production {
		attrs["knownTypes"] = r.registry.Types()
	}
	return &Element{Component: ComponentPlaceholder, Attrs: attrs}
}

func pageElement(node *Node) *Element {
	attrs := map[string]any{"id": node.ID}
	if len(node.layout) > 0 {
		var layout map[string]any
		if err := json.Unmarshal(node.layout, &layout); err == nil {
			attrs["layout"] = layout
		}
	}
	return &Element{Component: ComponentPage, Attrs: attrs}
}
