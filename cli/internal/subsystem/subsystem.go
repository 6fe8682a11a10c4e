// Package subsystem groups the runtime types of the portal by the concern
// they configure, backing type discovery in the CLI.
package subsystem

import (
	"sync"

	"openportal.dev/openportal/runtime"
)

// Subsystem is a named group of registered types with a human readable
// summary.
type Subsystem struct {
	// Name is a computer-readable id, e.g. "configuration".
	Name string
	// Title is a one-line summary shown in listings.
	Title string
	// Scheme holds the types of this subsystem.
	Scheme *runtime.Scheme
}

// NewSubsystem creates a subsystem whose scheme merges the given schemes.
// Conflicting registrations panic, so subsystems are assembled at package
// initialization.
func NewSubsystem(name, title string, schemes ...*runtime.Scheme) *Subsystem {
	merged := runtime.NewScheme()
	for _, scheme := range schemes {
		if err := merged.RegisterScheme(scheme); err != nil {
			panic(err)
		}
	}
	return &Subsystem{
		Name:   name,
		Title:  title,
		Scheme: merged,
	}
}

// Registry is a central container for registered subsystems.
type Registry struct {
	mu         sync.RWMutex
	subsystems map[string]*Subsystem
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subsystems: make(map[string]*Subsystem),
	}
}

// Register adds a subsystem to the registry. A subsystem with the same name
// is overwritten.
func (r *Registry) Register(s *Subsystem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subsystems[s.Name] = s
}

// Get retrieves a subsystem by its name.
func (r *Registry) Get(name string) *Subsystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subsystems[name]
}

// List returns all registered subsystems.
func (r *Registry) List() []*Subsystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Subsystem, 0, len(r.subsystems))
	for _, s := range r.subsystems {
		list = append(list, s)
	}
	return list
}

// GlobalRegistry is the default registry instance used by the CLI.
var GlobalRegistry = NewRegistry()

// Register adds a subsystem to the GlobalRegistry.
func Register(s *Subsystem) {
	GlobalRegistry.Register(s)
}

// Get retrieves a subsystem from the GlobalRegistry.
func Get(name string) *Subsystem {
	return GlobalRegistry.Get(name)
}

// List returns all subsystems in the GlobalRegistry.
func List() []*Subsystem {
	return GlobalRegistry.List()
}
