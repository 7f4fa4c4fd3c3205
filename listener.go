package constrain

// ChangeType identifies which validation signal a notification refers to.
type ChangeType int8

const (
	ChangeValid ChangeType = iota
	ChangeInvalid
	ChangeValidating
)

func (c ChangeType) String() string {
	switch c {
	case ChangeValid:
		return "valid"
	case ChangeInvalid:
		return "invalid"
	default:
		return "validating"
	}
}

// Status is the read surface shared by constrained properties and
// collection elements.
type Status[D any] interface {
	// Valid reports whether every constraint holds a valid final result.
	Valid() bool

	// Invalid reports whether at least one constraint holds an invalid
	// result. Valid and Invalid are never both true.
	Invalid() bool

	// Validating reports whether at least one constraint run is in flight.
	Validating() bool

	// Diagnostics returns the slot-ordered diagnostic list.
	Diagnostics() *DiagnosticList[D]
}

// ValidationListener observes transitions of the valid, invalid and
// validating signals. It is invoked once per signal that actually flipped,
// consolidated per triggering mutation, with the old and new signal value.
type ValidationListener[D any] func(source Status[D], change ChangeType, oldValue, newValue bool)
