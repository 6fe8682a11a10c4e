package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"sigs.k8s.io/yaml"
)

// Scheme is a dynamic registry for Typed prototypes.
type Scheme struct {
	mu sync.RWMutex
	// allowUnknown makes the scheme tolerate types without a registered
	// prototype: NewObject and Convert then fall back to *Raw instead of
	// failing.
	allowUnknown bool
	types        map[Type]Typed
}

// NewScheme creates a new registry.
func NewScheme(opts ...SchemeOption) *Scheme {
	scheme := &Scheme{
		types: make(map[Type]Typed),
	}
	for _, opt := range opts {
		opt(scheme)
	}
	return scheme
}

type SchemeOption func(*Scheme)

// WithAllowUnknown allows unknown types to be created as *Raw.
func WithAllowUnknown() SchemeOption {
	return func(scheme *Scheme) {
		scheme.allowUnknown = true
	}
}

func (s *Scheme) Clone() *Scheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := NewScheme()
	clone.allowUnknown = s.allowUnknown
	maps.Copy(clone.types, s.types)
	return clone
}

func (s *Scheme) RegisterWithAlias(prototype Typed, types ...Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, typ := range types {
		if _, exists := s.types[typ]; exists {
			return fmt.Errorf("type %q is already registered", typ)
		}
		s.types[typ] = prototype
	}
	return nil
}

func (s *Scheme) MustRegisterWithAlias(prototype Typed, types ...Type) {
	if err := s.RegisterWithAlias(prototype, types...); err != nil {
		panic(err)
	}
}

// RegisterScheme copies all registrations of the other scheme into this one.
// Registrations already present with the same prototype are kept; a type
// registered with a different prototype is a conflict.
func (s *Scheme) RegisterScheme(other *Scheme) error {
	if other == nil {
		return errors.New("cannot register nil scheme")
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	for typ, proto := range other.types {
		if existing, exists := s.types[typ]; exists {
			if reflect.TypeOf(existing) == reflect.TypeOf(proto) {
				continue
			}
			return fmt.Errorf("type %q is already registered with a different prototype", typ)
		}
		s.types[typ] = proto
	}
	return nil
}

// MustRegister registers a prototype under its Go struct name qualified with
// the given version.
func (s *Scheme) MustRegister(prototype Typed, version string) {
	t := reflect.TypeOf(prototype)
	if t.Kind() != reflect.Pointer {
		panic("all prototypes must be pointers to structs")
	}
	t = t.Elem()
	s.MustRegisterWithAlias(prototype, NewType(t.Name(), version))
}

// Types returns all registered types, sorted by string form.
func (s *Scheme) Types() []Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := slices.Collect(maps.Keys(s.types))
	slices.SortFunc(types, func(a, b Type) int {
		return strings.Compare(a.String(), b.String())
	})
	return types
}

func (s *Scheme) TypeForPrototype(prototype any) (Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for typ, proto := range s.types {
		// prefer fully qualified registrations over unversioned aliases
		if !typ.HasVersion() {
			continue
		}
		if reflect.TypeOf(prototype).Elem() == reflect.TypeOf(proto).Elem() {
			return typ, nil
		}
	}
	return Type{}, errors.New("prototype not found in scheme")
}

func (s *Scheme) MustTypeForPrototype(prototype Typed) Type {
	typ, err := s.TypeForPrototype(prototype)
	if err != nil {
		panic(err)
	}
	return typ
}

func (s *Scheme) IsRegistered(typ Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.types[typ]
	return exists
}

// NewObject creates a fresh instance for the given type. Unknown types yield
// a *Raw when the scheme allows unknown types.
func (s *Scheme) NewObject(typ Type) (Typed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proto, exists := s.types[typ]
	if exists {
		t := reflect.TypeOf(proto)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		object := reflect.New(t).Interface()
		return object.(Typed), nil //nolint:forcetypeassert // prototypes are always Typed
	}

	if s.allowUnknown {
		return &Raw{Type: typ}, nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typ)
}

// Decode reads YAML or JSON from data into the given object.
func (s *Scheme) Decode(data io.Reader, into Typed) error {
	if _, err := s.TypeForPrototype(into); err != nil && !s.allowUnknown {
		return fmt.Errorf("%T is not a valid registered type and cannot be decoded: %w", into, err)
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("could not read data: %w", err)
	}
	if err := yaml.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("failed to unmarshal into %T: %w", into, err)
	}
	return nil
}

// Convert transforms one Typed object into another. Both 'from' and 'into'
// must be non-nil pointers.
//
// Special cases:
//   - Raw → Raw: deep copy of the underlying data.
//   - Raw → Typed: unmarshals Raw.Data into the typed object.
//   - Typed → Raw: marshals the object, canonicalizes the JSON, and stores it.
//   - Typed → Typed: deep copy with reflection-based assignment.
func (s *Scheme) Convert(from Typed, into Typed) error {
	if from == nil || into == nil {
		return errors.New("both 'from' and 'into' must be non-nil")
	}

	if from.GetType().IsEmpty() {
		from = from.DeepCopyTyped()
		typ, err := s.TypeForPrototype(from)
		if err != nil && !s.allowUnknown {
			return fmt.Errorf("cannot convert from unregistered type: %w", err)
		}
		from.SetType(typ)
	}
	fromType := from.GetType()

	if rawFrom, ok := from.(*Raw); ok {
		if rawInto, ok := into.(*Raw); ok {
			rawFrom.DeepCopyInto(rawInto)
			return nil
		}
		return s.convertRawToTyped(rawFrom, into, fromType)
	}

	if rawInto, ok := into.(*Raw); ok {
		return s.convertTypedToRaw(from, rawInto, fromType)
	}

	return convertTypedToTyped(from, into)
}

func (s *Scheme) convertRawToTyped(from *Raw, into Typed, fromType Type) error {
	if !s.IsRegistered(fromType) && !s.allowUnknown {
		return fmt.Errorf("cannot decode from unregistered type: %s", fromType)
	}
	if err := json.Unmarshal(from.Data, into); err != nil {
		return fmt.Errorf("failed to unmarshal from raw: %w", err)
	}
	return nil
}

func (s *Scheme) convertTypedToRaw(from Typed, into *Raw, fromType Type) error {
	if !s.IsRegistered(fromType) && !s.allowUnknown {
		return fmt.Errorf("cannot encode from unregistered type: %s", fromType)
	}
	data, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("failed to marshal into raw: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return fmt.Errorf("could not canonicalize data: %w", err)
	}
	into.Type = fromType
	into.Data = canonical
	return nil
}

func convertTypedToTyped(from, into Typed) error {
	intoVal := reflect.ValueOf(into)
	if intoVal.Kind() != reflect.Pointer || intoVal.IsNil() {
		return errors.New("'into' must be a non-nil pointer")
	}
	copied := from.DeepCopyTyped()
	copiedVal := reflect.ValueOf(copied)
	if copiedVal.Kind() == reflect.Pointer {
		copiedVal = copiedVal.Elem()
	}
	intoElem := intoVal.Elem()
	if !copiedVal.Type().AssignableTo(intoElem.Type()) {
		return fmt.Errorf("cannot assign value of type %T to target of type %T", copied, into)
	}
	intoElem.Set(copiedVal)
	return nil
}
