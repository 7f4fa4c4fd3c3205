package constrain

import (
	"context"
	"log/slog"

	"github.com/reglet-dev/constrain/observable"
)

// ValueOptions configures a guarded scalar value.
type ValueOptions[T, D any] struct {
	// Constraints guard the value. With no constraints the value is
	// always valid and the snapshot follows it directly.
	Constraints []Constraint[T, D]

	// Logger receives engine diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Value is a mutable scalar guarded by constraints. Mutations trigger a
// validation pass; the aggregated valid/invalid/validating signals and the
// diagnostic list follow the latest pass, while ConstrainedValue lags
// behind as the last value that satisfied every constraint.
//
// Mutating methods must be called from one goroutine at a time. Accessors
// and the constrained snapshot are safe to use concurrently.
type Value[T, D any] struct {
	owner    *owner
	h        *helper[T, D]
	value    T
	snapshot *observable.Value[T]
}

// NewValue creates a guarded scalar holding initial.
//
// The initial state determines how the initial value is treated: with
// StateUnknown the constraints run immediately, with StateValid or
// StateInvalid the given verdict is trusted and validation first runs when
// the value or a constraint dependency changes.
func NewValue[T, D any](initial T, initialState State, opts ValueOptions[T, D]) *Value[T, D] {
	o := &owner{}
	p := &Value[T, D]{
		owner:    o,
		value:    initial,
		snapshot: observable.NewValue(initial),
	}

	p.h = newHelper(o, opts.Logger, func() T { return p.value }, opts.Constraints, initialState)
	p.h.sink = &scalarSink[T]{out: p.snapshot}
	p.h.statusSrc = p
	p.h.watchDependencies(p.onDependencyChanged)

	if initialState == StateUnknown {
		o.perform(func() { p.h.runPass(nil) })
	}
	return p
}

func (p *Value[T, D]) onDependencyChanged(dep observable.Observable) {
	p.owner.perform(func() { p.h.runPass(dep) })
}

// Get returns the current unconstrained value.
func (p *Value[T, D]) Get() T {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.value
}

// Set stores a new value and runs every constraint against it.
func (p *Value[T, D]) Set(value T) {
	p.owner.perform(func() {
		p.value = value
		p.h.runPass(nil)
	})
}

// Valid reports whether every constraint holds for the current value.
func (p *Value[T, D]) Valid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.valid
}

// Invalid reports whether at least one constraint is violated.
func (p *Value[T, D]) Invalid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.invalid
}

// Validating reports whether a constraint run is in flight.
func (p *Value[T, D]) Validating() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.validating
}

// Diagnostics returns the diagnostic list for this value.
func (p *Value[T, D]) Diagnostics() *DiagnosticList[D] {
	return p.h.diags
}

// ConstrainedValue exposes the last value that satisfied every constraint.
// It never reflects an intermediate or invalid value.
func (p *Value[T, D]) ConstrainedValue() observable.Readable[T] {
	return p.snapshot
}

// SubscribeValidation registers a listener for valid/invalid/validating
// transitions. Listeners are invoked outside the engine's critical section
// and may safely re-enter the property.
func (p *Value[T, D]) SubscribeValidation(fn ValidationListener[D]) observable.Subscription {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.subscribe(fn)
}

// Settled blocks until no validation run is in flight, or ctx is done.
func (p *Value[T, D]) Settled(ctx context.Context) error {
	return p.h.settled(ctx)
}

// Dispose cancels outstanding runs without awaiting them and detaches the
// value from its constraint dependencies. Idempotent.
func (p *Value[T, D]) Dispose() {
	p.owner.perform(p.h.dispose)
}

var _ Status[string] = (*Value[int, string])(nil)
