package constrain

// Result is the immutable outcome of one constraint check: a validity flag
// plus an optional diagnostic payload. A diagnostic may accompany a valid as
// well as an invalid result; diagnostics are informational and not tied to
// failure. The zero Result is "no result yet".
type Result[D any] struct {
	state State
	diag  *D
}

// Valid returns a valid result with no diagnostic.
func Valid[D any]() Result[D] {
	return Result[D]{state: StateValid}
}

// Invalid returns an invalid result with no diagnostic.
func Invalid[D any]() Result[D] {
	return Result[D]{state: StateInvalid}
}

// None returns the "no result yet" result.
func None[D any]() Result[D] {
	return Result[D]{}
}

// ValidWithDiagnostic returns a valid result carrying a diagnostic.
func ValidWithDiagnostic[D any](diag D) Result[D] {
	return Result[D]{state: StateValid, diag: &diag}
}

// InvalidWithDiagnostic returns an invalid result carrying a diagnostic.
func InvalidWithDiagnostic[D any](diag D) Result[D] {
	return Result[D]{state: StateInvalid, diag: &diag}
}

// NewResult returns a result with the given validity and diagnostic.
func NewResult[D any](valid bool, diag D) Result[D] {
	if valid {
		return ValidWithDiagnostic(diag)
	}
	return InvalidWithDiagnostic(diag)
}

// IsValid reports whether the result is valid. It is false for the
// "no result yet" result.
func (r Result[D]) IsValid() bool {
	return r.state == StateValid
}

// IsNone reports whether this is the "no result yet" result.
func (r Result[D]) IsNone() bool {
	return r.state == StateUnknown
}

// Diagnostic returns the diagnostic payload, if any.
func (r Result[D]) Diagnostic() (D, bool) {
	if r.diag == nil {
		var zero D
		return zero, false
	}
	return *r.diag, true
}
