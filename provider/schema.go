package provider

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects a JSON Schema for T, suitable for Tool.Parameters or a
// schema-constrained ResponseFormat. The schema is fully inlined: no $ref,
// no $defs, no $schema header, which is the shape local backends accept.
func SchemaFor[T any]() (json.RawMessage, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var v T
	s := r.Reflect(&v)
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// ToolFor builds a Tool whose parameter schema is reflected from T.
//
// Example:
//
//	type weatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name"`
//	}
//	tool, err := provider.ToolFor[weatherArgs]("get_weather", "Look up current weather")
func ToolFor[T any](name, description string) (Tool, error) {
	params, err := SchemaFor[T]()
	if err != nil {
		return Tool{}, err
	}
	return Tool{Name: name, Description: description, Parameters: params}, nil
}

// FormatFor builds a schema-constrained ResponseFormat from T.
// The backend must report the StructuredOutput capability.
func FormatFor[T any]() (*ResponseFormat, error) {
	schema, err := SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	return &ResponseFormat{Type: FormatJSONSchema, Schema: schema}, nil
}
