package constrain

import (
	"context"
	"fmt"
)

// serializedValidator coordinates successive runs of one constraint against
// one guarded value, guaranteeing at-most-one-authoritative-result ordering.
// Every validation request advances the generation counter and cancels the
// context of the previous run; when a run completes, its captured generation
// is compared against the current one, and only the current run's result is
// applied. A superseded completion is discarded before any bookkeeping and
// never alters aggregate state; starts are coalesced per constraint, so the
// in-flight accounting belongs to the newest generation alone. The tie-break
// is independent of completion order.
//
// All methods except the goroutine body run with the owner lock held.
type serializedValidator[T, D any] struct {
	helper     *helper[T, D]
	constraint Constraint[T, D]
	slot       int

	gen      uint64
	cancel   context.CancelFunc
	inFlight bool
	last     Result[D]
}

// validate requests a new run for the given value. Synchronous constraints
// complete inline; asynchronous constraints complete later on an arbitrary
// goroutine and are reconciled by generation.
func (v *serializedValidator[T, D]) validate(value T) {
	v.gen++
	gen := v.gen

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}

	h := v.helper
	if h.diags.clear(v.slot) {
		h.diagsDirty = true
	}

	if !v.constraint.async {
		h.notify(evStarted)
		res := runCheck(context.Background(), v.constraint.check, value, h)
		v.apply(value, res)
		return
	}

	if !v.inFlight {
		v.inFlight = true
		h.notify(evStarted)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	go v.runAsync(ctx, gen, value)
}

// runAsync executes one asynchronous run and marshals its completion back
// under the owner lock, optionally through the constraint's completion
// executor.
func (v *serializedValidator[T, D]) runAsync(ctx context.Context, gen uint64, value T) {
	res := runCheck(ctx, v.constraint.check, value, v.helper)

	complete := func() {
		v.helper.owner.perform(func() {
			if v.helper.disposed {
				return
			}

			if gen != v.gen {
				// Intermediate completion: a newer request superseded this
				// run while it was executing. The result is discarded and no
				// flags change; the current generation still accounts for
				// the in-flight state.
				v.helper.log.Debug("discarding superseded validation result",
					"helper", v.helper.id, "slot", v.slot, "generation", gen, "current", v.gen)
				return
			}

			v.inFlight = false
			v.cancel = nil
			v.apply(value, res)
		})
	}

	if exec := v.constraint.completion; exec != nil {
		exec(complete)
	} else {
		complete()
	}
}

// apply records an authoritative result, updates the diagnostic slot, stores
// the validated value for a later snapshot commit, and feeds the outcome into
// the owner's aggregation. Called with the owner lock held for the current
// generation.
func (v *serializedValidator[T, D]) apply(value T, res Result[D]) {
	v.last = res

	h := v.helper
	if diag, ok := res.Diagnostic(); ok {
		if h.diags.set(v.slot, diag, res.IsValid()) {
			h.diagsDirty = true
		}
	} else if h.diags.clear(v.slot) {
		h.diagsDirty = true
	}

	if res.IsValid() {
		h.store(value)
		h.notify(evSucceeded)
	} else {
		h.notify(evFailed)
	}
}

// dispose cancels any outstanding run without awaiting it. The eventual
// completion finds the helper disposed and becomes a no-op.
func (v *serializedValidator[T, D]) dispose() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.inFlight = false
}

// runCheck invokes a check function, translating errors and panics into an
// invalid result with no diagnostic. A constraint failure is a validation
// outcome, never a fault that reaches the caller.
func runCheck[T, D any](ctx context.Context, check CheckFunc[T, D], value T, h *helper[T, D]) (res Result[D]) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("constraint check panicked", "helper", h.id, "panic", fmt.Sprint(r))
			res = Invalid[D]()
		}
	}()

	res, err := check(ctx, value)
	if err != nil {
		h.log.Error("constraint check failed", "helper", h.id, "error", err)
		return Invalid[D]()
	}
	return res
}
