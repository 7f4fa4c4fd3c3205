package constrain

// State is the coarse summary of a validation surface. It is used at
// property construction time to decide whether to validate eagerly
// (StateUnknown) or to defer validation until the first mutation.
type State int8

const (
	// StateUnknown means at least one constraint has not produced a result.
	StateUnknown State = iota

	// StateValid means every constraint produced a valid result.
	StateValid

	// StateInvalid means at least one constraint produced an invalid result.
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}
