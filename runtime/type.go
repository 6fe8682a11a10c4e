package runtime

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies a kind of typed payload, optionally qualified with a
// version. Its string form is "name" or "name/version", e.g.
// "cache.config.openportal.dev/v1" or the unversioned widget type "Button".
type Type struct {
	Name    string `json:"-"`
	Version string `json:"-"`
}

// NewType creates a versioned type.
func NewType(name, version string) Type {
	return Type{Name: name, Version: version}
}

// NewUnversionedType creates a type without a version qualifier.
func NewUnversionedType(name string) Type {
	return Type{Name: name}
}

// ParseType parses "name" or "name/version" into a Type.
func ParseType(s string) (Type, error) {
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return Type{}, fmt.Errorf("invalid type %q: missing name", s)
		}
		return Type{Name: parts[0]}, nil
	case 2:
		if parts[0] == "" {
			return Type{}, fmt.Errorf("invalid type %q: missing name", s)
		}
		if parts[1] == "" {
			return Type{}, fmt.Errorf("invalid type %q: missing version", s)
		}
		return Type{Name: parts[0], Version: parts[1]}, nil
	default:
		return Type{}, fmt.Errorf("invalid type %q: expected name or name/version", s)
	}
}

// MustParseType parses s and panics on failure. Intended for static
// registration in package init blocks.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Type) String() string {
	if t.Version == "" {
		return t.Name
	}
	return t.Name + "/" + t.Version
}

func (t Type) IsEmpty() bool {
	return t.Name == "" && t.Version == ""
}

func (t Type) HasVersion() bool {
	return t.Version != ""
}

func (t Type) Equal(other Type) bool {
	return t == other
}

func (t Type) MarshalJSON() ([]byte, error) {
	if t.IsEmpty() {
		return nil, fmt.Errorf("cannot marshal empty type")
	}
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("could not unmarshal type: %w", err)
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

var _ interface {
	json.Marshaler
	fmt.Stringer
} = Type{}

var _ json.Unmarshaler = &Type{}
