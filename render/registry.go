package render

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Registry maps widget type names, as they appear in page configurations,
// to widget implementations. It is populated at startup and safe for
// concurrent use afterwards.
type Registry struct {
	mu       sync.RWMutex
	widgets  map[string]Widget
	props    map[string]reflect.Type
	fallback Widget
}

// NewRegistry creates an empty widget registry.
func NewRegistry() *Registry {
	return &Registry{
		widgets: make(map[string]Widget),
		props:   make(map[string]reflect.Type),
	}
}

// Register binds a widget type name to an implementation. Registering the
// same name twice is an error.
func (r *Registry) Register(typ string, widget Widget) error {
	if typ == "" {
		return fmt.Errorf("widget type must not be empty")
	}
	if widget == nil {
		return fmt.Errorf("widget implementation for type %q must not be nil", typ)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.widgets[typ]; exists {
		return fmt.Errorf("widget type %q already registered", typ)
	}
	r.widgets[typ] = widget
	return nil
}

// RegisterWithProps additionally binds a props prototype. The resolver
// decodes each descriptor's props payload into a fresh instance of the
// prototype before rendering; a payload that does not decode fails that
// widget like any other rendering error.
func (r *Registry) RegisterWithProps(typ string, widget Widget, prototype any) error {
	if prototype == nil {
		return fmt.Errorf("props prototype for type %q must not be nil", typ)
	}
	if err := r.Register(typ, widget); err != nil {
		return err
	}
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[typ] = t
	return nil
}

// MustRegister is Register, panicking on error. For use in initialization
// blocks.
func (r *Registry) MustRegister(typ string, widget Widget) {
	if err := r.Register(typ, widget); err != nil {
		panic(err)
	}
}

// SetDefault installs a widget that serves every type name without an
// explicit registration. With a default installed, unknown types never
// produce placeholders.
func (r *Registry) SetDefault(widget Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = widget
}

// Lookup returns the implementation registered for the type name.
func (r *Registry) Lookup(typ string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	widget, ok := r.widgets[typ]
	return widget, ok
}

// Default returns the fallback widget, if any.
func (r *Registry) Default() (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback, r.fallback != nil
}

// Types returns all registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.widgets))
	for typ := range r.widgets {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

// newProps returns a fresh props instance for the type, or false when no
// prototype is registered.
func (r *Registry) newProps(typ string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.props[typ]
	if !ok {
		return nil, false
	}
	return reflect.New(t).Interface(), true
}
