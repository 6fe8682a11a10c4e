package runtime

// Typed is any object discriminated by a Type. Payloads flowing through the
// portal (configuration entries, origin specifications, widget props) carry
// their type inline so that schemes can route them to the right Go struct.
type Typed interface {
	// GetType returns the objects type, possibly including a version.
	GetType() Type
	// SetType sets the objects type.
	SetType(typ Type)
	// DeepCopyTyped returns a deep copy of the object.
	DeepCopyTyped() Typed
}
