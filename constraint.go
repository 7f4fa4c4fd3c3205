package constrain

import (
	"context"

	"github.com/reglet-dev/constrain/observable"
)

// CheckFunc performs one constraint check against a value. A non-nil error
// is treated as an invalid result with no diagnostic; it is logged and never
// propagated to the caller of the guarded property. For asynchronous
// constraints the context is cancelled when the run is superseded by a newer
// request or the owning property is disposed; cancellation is cooperative
// and best-effort.
type CheckFunc[T, D any] func(ctx context.Context, value T) (Result[D], error)

// Executor runs a completion callback on a caller-chosen execution context,
// for example an application event loop. A nil executor runs completions on
// the goroutine that finished the check.
type Executor func(fn func())

// Constraint describes one check of a guarded value: the check function, the
// execution mode, an optional list of dependencies whose invalidation
// re-triggers the check, and an optional completion executor.
//
// Constraints are stateless with respect to any single value and may be
// shared across properties. A constraint that keeps an internal cache (for
// example a pattern compiled from an observed dependency) must keep that
// cache safe for concurrent reads from worker goroutines.
type Constraint[T, D any] struct {
	check      CheckFunc[T, D]
	deps       []observable.Observable
	completion Executor
	async      bool
}

// New returns a synchronous constraint. The check completes on the calling
// goroutine within the dispatching validation pass. Panics if check is nil.
func New[T, D any](check CheckFunc[T, D], deps ...observable.Observable) Constraint[T, D] {
	if check == nil {
		panic("constrain: nil check function")
	}
	return Constraint[T, D]{check: check, deps: deps}
}

// NewAsync returns an asynchronous constraint. Each validation request runs
// the check on its own goroutine; the result is applied through the
// completion executor, if any. Panics if check is nil.
func NewAsync[T, D any](check CheckFunc[T, D], deps ...observable.Observable) Constraint[T, D] {
	c := New(check, deps...)
	c.async = true
	return c
}

// Async returns a copy of the constraint that runs each check on its own
// goroutine.
func (c Constraint[T, D]) Async() Constraint[T, D] {
	c.async = true
	return c
}

// Check invokes the constraint's check function directly, outside any
// guarded property. It is the composition point for constraints that wrap
// other constraints.
func (c Constraint[T, D]) Check(ctx context.Context, value T) (Result[D], error) {
	return c.check(ctx, value)
}

// WithCompletionExecutor returns a copy of the constraint whose asynchronous
// completions are marshaled through exec before any shared state is touched.
func (c Constraint[T, D]) WithCompletionExecutor(exec Executor) Constraint[T, D] {
	c.completion = exec
	return c
}

// Dependencies returns the observables that re-trigger this constraint.
func (c Constraint[T, D]) Dependencies() []observable.Observable {
	return c.deps
}

func (c Constraint[T, D]) dependsOn(dep observable.Observable) bool {
	for _, d := range c.deps {
		if d == dep {
			return true
		}
	}
	return false
}
