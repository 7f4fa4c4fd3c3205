// Package constraints provides ready-made constraints for common
// validation concerns: presence checks, ordered comparisons, pattern
// matching, expression evaluation, JSON Schema conformance, semantic
// version checks and element-wise collection validation.
//
// All constraints in this package produce Diagnostic values, carrying a
// stable machine-readable code and a human-readable message. Constraints
// are synchronous unless stated otherwise; wrap them with Async to move
// the check off the mutating goroutine.
package constraints

import (
	"context"
	"fmt"
	"strings"

	"github.com/reglet-dev/constrain"
)

// Diagnostic is the outcome detail attached by the constraints in this
// package.
type Diagnostic struct {
	// Code identifies the constraint kind that produced the diagnostic,
	// for example "not_blank" or "semver_range".
	Code string

	// Message describes the verdict in human-readable form.
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

func invalid(code, format string, args ...any) constrain.Result[Diagnostic] {
	return constrain.InvalidWithDiagnostic(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...)})
}

// NotEmpty requires a non-empty string.
func NotEmpty() constrain.Constraint[string, Diagnostic] {
	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		if value == "" {
			return invalid("not_empty", "value must not be empty"), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// NotBlank requires a string containing at least one non-whitespace
// character.
func NotBlank() constrain.Constraint[string, Diagnostic] {
	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		if strings.TrimSpace(value) == "" {
			return invalid("not_blank", "value must not be blank"), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// NotNil requires a non-nil pointer.
func NotNil[T any]() constrain.Constraint[*T, Diagnostic] {
	return constrain.New(func(_ context.Context, value *T) (constrain.Result[Diagnostic], error) {
		if value == nil {
			return invalid("not_nil", "value must not be nil"), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}
