package constraints

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/constrain"
)

// Schema requires the guarded value to conform to the given JSON Schema
// document. The schema is compiled once at construction; values are
// expected in the decoded-JSON shape (map[string]any, []any, scalars).
func Schema(schemaJSON string) (constrain.Constraint[any, Diagnostic], error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
		return constrain.Constraint[any, Diagnostic]{}, fmt.Errorf("adding schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return constrain.Constraint[any, Diagnostic]{}, fmt.Errorf("compiling schema: %w", err)
	}

	return constrain.New(func(_ context.Context, value any) (constrain.Result[Diagnostic], error) {
		if err := schema.Validate(value); err != nil {
			var validationErr *jsonschema.ValidationError
			if errors.As(err, &validationErr) {
				return invalid("schema", "%s", formatSchemaError(validationErr)), nil
			}
			return invalid("schema", "%v", err), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}), nil
}

// MustSchema is Schema but panics on a compilation error, for static
// schemas known at build time.
func MustSchema(schemaJSON string) constrain.Constraint[any, Diagnostic] {
	c, err := Schema(schemaJSON)
	if err != nil {
		panic(err)
	}
	return c
}

// formatSchemaError flattens a nested schema validation error into a single
// readable message.
func formatSchemaError(err *jsonschema.ValidationError) string {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return "schema validation failed"
	}
	return strings.Join(messages, "; ")
}
