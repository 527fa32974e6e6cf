package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const jsonSchemaURL = "input_record.json"

// JSONSchema describes a raw InputRecord body. Every field is required and
// no other property is allowed.
func JSONSchema() map[string]any {
	props := make(map[string]any, len(registry))
	required := make([]string, 0, len(registry))
	for _, spec := range registry {
		props[spec.Name] = propertyFor(spec.Domain)
		required = append(required, spec.Name)
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func propertyFor(d Domain) map[string]any {
	switch d.Kind {
	case KindCategorical:
		if d.Open {
			return map[string]any{"type": "string", "minLength": 1}
		}
		return map[string]any{"type": "string", "enum": d.Values}
	case KindBoundedNumeric:
		return map[string]any{"type": "number", "minimum": d.Min, "maximum": d.Max}
	case KindOrdinalYear:
		return map[string]any{"type": "integer", "enum": d.Years}
	}
	return map[string]any{}
}

// BodyValidator checks raw JSON bodies against JSONSchema.
type BodyValidator struct {
	schema *jsonschema.Schema
}

// CompileJSONSchema compiles JSONSchema once for repeated validation.
func CompileJSONSchema() (*BodyValidator, error) {
	b, err := json.Marshal(JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(jsonSchemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(jsonSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &BodyValidator{schema: compiled}, nil
}

// Decode validates data and, when it matches, decodes it into a record.
func (v *BodyValidator) Decode(data []byte) (InputRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return InputRecord{}, fmt.Errorf("malformed json: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return InputRecord{}, &ValidationError{Violations: violationsFrom(err)}
	}
	var record InputRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return InputRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}

func violationsFrom(err error) []Violation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Field: "", Message: err.Error()}}
	}
	var violations []Violation
	for _, leaf := range leaves(ve) {
		field := leaf.InstanceLocation
		if len(field) > 0 && field[0] == '/' {
			field = field[1:]
		}
		violations = append(violations, Violation{Field: field, Message: leaf.Message})
	}
	return violations
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}
