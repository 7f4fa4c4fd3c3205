package profile

import "fmt"

// UnknownConstraintError indicates a rule names a constraint type this
// package does not provide.
type UnknownConstraintError struct {
	Field string
	Type  string
}

func (e *UnknownConstraintError) Error() string {
	return fmt.Sprintf("field %q: unknown constraint type %q", e.Field, e.Type)
}

// MissingParameterError indicates a constraint declaration omits a
// parameter its type requires.
type MissingParameterError struct {
	Field     string
	Type      string
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("field %q: constraint %q requires parameter %q", e.Field, e.Type, e.Parameter)
}

// InvalidParameterError indicates a constraint parameter that could not be
// compiled, for example a malformed pattern or version range.
type InvalidParameterError struct {
	Field     string
	Type      string
	Parameter string
	Err       error
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("field %q: constraint %q has invalid %s: %v", e.Field, e.Type, e.Parameter, e.Err)
}

func (e *InvalidParameterError) Unwrap() error {
	return e.Err
}
