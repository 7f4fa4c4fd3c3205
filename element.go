package constrain

import (
	"log/slog"

	"github.com/reglet-dev/constrain/observable"
)

// ConstrainedElement tracks the validation state of a single collection
// element against the collection's element constraints. Elements are created
// and disposed by their owning collection property as the underlying
// collection changes; user code only observes them.
//
// Every validator event of an element is mirrored into the owning
// collection's aggregation, so the collection reports validating while any
// of its elements validates and invalid while any element is invalid.
type ConstrainedElement[T, D any] struct {
	owner *owner
	value T
	h     *helper[T, D]
}

func newElement[T, D any](
	o *owner,
	log *slog.Logger,
	value T,
	constraints []Constraint[T, D],
	initial State,
	forward func(ev validatorEvent),
) *ConstrainedElement[T, D] {
	e := &ConstrainedElement[T, D]{owner: o, value: value}
	e.h = newHelper(o, log, func() T { return e.value }, constraints, initial)
	e.h.statusSrc = e
	e.h.forward = forward
	e.h.watchDependencies(func(dep observable.Observable) {
		o.perform(func() { e.h.runPass(dep) })
	})
	return e
}

// validate runs every element constraint. Called with the owner lock held.
func (e *ConstrainedElement[T, D]) validate() {
	e.h.runPass(nil)
}

// state reports the element's aggregate for folding into the collection
// state. Called with the owner lock held.
func (e *ConstrainedElement[T, D]) state() State {
	return e.h.state()
}

// dispose cancels in-flight validators without awaiting them and mirrors
// their cancellation into the collection aggregation. Called with the owner
// lock held when the element leaves the collection.
func (e *ConstrainedElement[T, D]) dispose() {
	e.h.dispose()
}

// Value returns the collection element this instance guards.
func (e *ConstrainedElement[T, D]) Value() T {
	return e.value
}

// Valid reports whether every element constraint holds.
func (e *ConstrainedElement[T, D]) Valid() bool {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	return e.h.valid
}

// Invalid reports whether at least one element constraint is violated.
func (e *ConstrainedElement[T, D]) Invalid() bool {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	return e.h.invalid
}

// Validating reports whether an element constraint run is in flight.
func (e *ConstrainedElement[T, D]) Validating() bool {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	return e.h.validating
}

// Diagnostics returns the element's diagnostic list.
func (e *ConstrainedElement[T, D]) Diagnostics() *DiagnosticList[D] {
	return e.h.diags
}

// SubscribeValidation registers a listener for this element's validation
// state transitions. After the element is disposed the listener is never
// invoked again.
func (e *ConstrainedElement[T, D]) SubscribeValidation(fn ValidationListener[D]) observable.Subscription {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	return e.h.subscribe(fn)
}

var _ Status[string] = (*ConstrainedElement[int, string])(nil)
