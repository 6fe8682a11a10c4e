package runtime

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchemaIntrospectable defines a type that can provide its JSON Schema
// representation as a raw byte slice. Implementers typically generate and
// embed the schema alongside the type and return it from JSONSchema().
type JSONSchemaIntrospectable interface {
	// JSONSchema returns the JSON Schema for the implementing type.
	// If implemented, MUST return a valid JSON Schema.
	JSONSchema() []byte
}

// ReflectJSONSchema derives a JSON Schema from the Go structure of the given
// prototype. Types that want full control over their schema should implement
// JSONSchemaIntrospectable instead; this is the fallback used for
// introspection of plain typed structs.
func ReflectJSONSchema(prototype Typed) ([]byte, error) {
	if introspectable, ok := prototype.(JSONSchemaIntrospectable); ok {
		if schema := introspectable.JSONSchema(); len(schema) > 0 {
			return schema, nil
		}
	}
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(prototype)
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("could not marshal reflected schema for %T: %w", prototype, err)
	}
	return data, nil
}
