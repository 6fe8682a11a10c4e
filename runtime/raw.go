package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Raw is the opaque escape hatch of the type system: a payload whose type is
// known but whose structure is not interpreted. It retains the original bytes
// so that round-tripping through a scheme never loses information.
type Raw struct {
	Type `json:"type"`
	Data []byte `json:"-"`
}

var _ interface {
	json.Marshaler
	json.Unmarshaler
	Typed
} = &Raw{}

func (r *Raw) GetType() Type {
	return r.Type
}

func (r *Raw) SetType(typ Type) {
	r.Type = typ
}

func (r *Raw) DeepCopyTyped() Typed {
	return r.DeepCopy()
}

func (r *Raw) DeepCopy() *Raw {
	out := &Raw{}
	r.DeepCopyInto(out)
	return out
}

func (r *Raw) DeepCopyInto(out *Raw) {
	out.Type = r.Type
	out.Data = bytes.Clone(r.Data)
}

func (r *Raw) MarshalJSON() ([]byte, error) {
	return r.Data, nil
}

func (r *Raw) UnmarshalJSON(data []byte) error {
	t := &struct {
		Type Type `json:"type"`
	}{}
	if err := json.Unmarshal(data, t); err != nil {
		return fmt.Errorf("could not unmarshal data into raw: %w", err)
	}
	r.Type = t.Type
	r.Data = data
	return nil
}

// Canonical returns the canonical JSON form of the payload, suitable for
// digesting and byte comparison.
func (r *Raw) Canonical() ([]byte, error) {
	canonical, err := jsoncanonicalizer.Transform(r.Data)
	if err != nil {
		return nil, fmt.Errorf("could not canonicalize raw data: %w", err)
	}
	return canonical, nil
}

func (r *Raw) String() string {
	return fmt.Sprintf("%s: %s", r.Type, string(r.Data))
}
