package descriptor

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed page-config.schema.json
var pageConfigSchema []byte

const schemaID = "https://openportal.dev/schemas/page-config.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	unmarshaled, err := jsonschema.UnmarshalJSON(bytes.NewReader(pageConfigSchema))
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal page config schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaID, unmarshaled); err != nil {
		return nil, fmt.Errorf("could not add page config schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaID)
	if err != nil {
		return nil, fmt.Errorf("could not compile page config schema: %w", err)
	}
	return schema, nil
})

// ValidateSchema checks a serialized page configuration against the embedded
// JSON schema. This is stricter than Validate: it also constrains the shape
// of nested widget fields. Violations are ErrInvalidConfig kinds carrying the
// schema evaluation detail.
func ValidateSchema(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: could not decode page config: %w", ErrInvalidConfig, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
