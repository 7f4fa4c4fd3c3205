package constrain

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/reglet-dev/constrain/observable"
)

// validatorEvent is the state transition reported by a serializedValidator
// to its owning helper.
type validatorEvent int8

const (
	evStarted validatorEvent = iota
	evSucceeded
	evFailed
	evCancelled
)

// snapshotSink receives validated values and commits them to the deferred
// snapshot. store is called with the owner lock held for every value that
// passed an individual constraint; commit is called with the owner lock held
// when a pass ends all-valid and returns the action that publishes the
// snapshot outside the lock, or nil if there is nothing to publish.
type snapshotSink[T any] interface {
	store(value T)
	commit() func()
}

// helper aggregates the outcomes of all constraints guarding one value (or
// one collection element) into the valid/invalid/validating signals, the
// diagnostic list and the deferred snapshot. It is the scalar engine of the
// package; collection properties layer element handling on top through the
// extra and forward hooks.
//
// All methods run with the owner lock held unless stated otherwise.
type helper[T, D any] struct {
	owner *owner
	log   *slog.Logger
	id    string

	// source reads the current guarded value.
	source func() T

	// sink is nil for collection elements, which have no snapshot.
	sink snapshotSink[T]

	// extra folds additional state (per-element outcomes) into the
	// aggregate. May be nil.
	extra func() State

	// forward mirrors every validator event to an enclosing aggregation
	// (a collection element forwards into its collection). May be nil.
	forward func(ev validatorEvent)

	statusSrc  Status[D]
	validators []*serializedValidator[T, D]
	deps       []observable.Subscription
	diags      *DiagnosticList[D]

	listeners map[int]ValidationListener[D]
	nextID    int

	valid, invalid, validating bool
	lastValid, lastInvalid     bool
	lastValidating             bool

	count      int // constraints with an unresolved current run
	quiescent  bool
	diagsDirty bool
	disposed   bool
	settleCh   chan struct{}
}

func newHelper[T, D any](o *owner, log *slog.Logger, source func() T, constraints []Constraint[T, D], initial State) *helper[T, D] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	h := &helper[T, D]{
		owner:  o,
		log:    log,
		id:     uuid.NewString(),
		source: source,
		diags:  &DiagnosticList[D]{},
	}

	h.validators = make([]*serializedValidator[T, D], len(constraints))
	for i, c := range constraints {
		h.validators[i] = &serializedValidator[T, D]{helper: h, constraint: c, slot: i}
	}

	valid := len(constraints) == 0 || initial == StateValid
	h.valid, h.lastValid = valid, valid
	invalid := initial == StateInvalid
	h.invalid, h.lastInvalid = invalid, invalid

	return h
}

// watchDependencies subscribes invalidate to every distinct constraint
// dependency. Called once during property construction, before the lock is
// taken.
func (h *helper[T, D]) watchDependencies(invalidate func(dep observable.Observable)) {
	seen := make(map[observable.Observable]struct{})
	for _, v := range h.validators {
		for _, dep := range v.constraint.deps {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			d := dep
			h.deps = append(h.deps, dep.Subscribe(func() { invalidate(d) }))
		}
	}
}

// runPass executes one complete validation pass: notifications are
// suppressed while every matching constraint is dispatched, and exactly one
// consolidated notification fires afterwards for each signal that flipped.
// A nil dep means the guarded value itself changed and every constraint
// re-runs; otherwise only constraints declaring dep re-run.
func (h *helper[T, D]) runPass(dep observable.Observable) {
	if h.disposed {
		return
	}
	h.beginPass()
	h.dispatch(dep)
	h.endPass()
}

// beginPass suppresses change notifications for the duration of a
// dispatch-all-constraints pass, preventing observers from seeing a flicker
// of intermediate states while synchronous constraints resolve in sequence.
func (h *helper[T, D]) beginPass() {
	h.quiescent = true
}

// dispatch invokes every constraint matching the trigger. With no
// constraints at all, the current value is stored for an immediate snapshot
// commit at the end of the pass.
func (h *helper[T, D]) dispatch(dep observable.Observable) {
	if len(h.validators) == 0 {
		h.store(h.source())
		return
	}

	value := h.source()
	for _, v := range h.validators {
		if dep == nil || v.constraint.dependsOn(dep) {
			v.validate(value)
		}
	}
}

// endPass re-enables notifications, recomputes the aggregate if no run is
// still in flight, commits the snapshot on an all-valid outcome, and fires
// the consolidated notifications.
func (h *helper[T, D]) endPass() {
	h.quiescent = false

	if h.count == 0 {
		st := h.aggregateState()
		h.applyAggregate(st)
		if st == StateValid {
			h.queueCommit()
		}
	}

	h.queueTransitions()
	h.queueDiagnostics()
}

// notify feeds one validator state transition into the aggregation,
// mirroring it to the enclosing aggregation if one is attached. Superseded
// completions never reach this method; serializedValidator discards them
// before any bookkeeping.
func (h *helper[T, D]) notify(ev validatorEvent) {
	switch ev {
	case evStarted:
		if h.count == 0 {
			h.validating = true
			h.valid = false
			h.invalid = false
		}
		h.count++

	case evSucceeded:
		h.count--
		if h.count == 0 && !h.quiescent {
			st := h.aggregateState()
			h.applyAggregate(st)
			if st == StateValid {
				h.queueCommit()
			}
		}

	case evFailed:
		h.count--
		h.valid = false
		h.invalid = true
		h.validating = h.count > 0

	case evCancelled:
		h.count--
		if h.count == 0 {
			h.validating = false
		}
	}

	if h.forward != nil {
		h.forward(ev)
	}

	if !h.quiescent {
		h.queueTransitions()
		h.queueDiagnostics()
	}
}

// aggregateState folds every validator's last applied result, plus any
// element-level state, into a single State.
func (h *helper[T, D]) aggregateState() State {
	unknown := false
	for _, v := range h.validators {
		if v.last.IsNone() {
			unknown = true
		} else if !v.last.IsValid() {
			return StateInvalid
		}
	}

	if h.extra != nil {
		switch h.extra() {
		case StateInvalid:
			return StateInvalid
		case StateUnknown:
			unknown = true
		}
	}

	if unknown {
		return StateUnknown
	}
	return StateValid
}

func (h *helper[T, D]) applyAggregate(st State) {
	h.validating = false
	h.valid = st == StateValid
	h.invalid = st == StateInvalid
}

// state returns the element-style view of this helper's flags.
func (h *helper[T, D]) state() State {
	switch {
	case h.invalid:
		return StateInvalid
	case h.valid:
		return StateValid
	default:
		return StateUnknown
	}
}

func (h *helper[T, D]) store(value T) {
	if h.sink != nil {
		h.sink.store(value)
	}
}

// queueCommit schedules the snapshot publication for after the lock is
// released.
func (h *helper[T, D]) queueCommit() {
	if h.sink == nil {
		return
	}
	if fn := h.sink.commit(); fn != nil {
		h.owner.queue(fn)
	}
}

// queueTransitions compares the current signals against the last fired ones
// and queues one notification per signal that flipped.
func (h *helper[T, D]) queueTransitions() {
	if h.lastValidating && !h.validating && h.settleCh != nil {
		close(h.settleCh)
		h.settleCh = nil
	}

	h.queueTransition(ChangeValid, &h.lastValid, h.valid)
	h.queueTransition(ChangeInvalid, &h.lastInvalid, h.invalid)
	h.queueTransition(ChangeValidating, &h.lastValidating, h.validating)
}

func (h *helper[T, D]) queueTransition(change ChangeType, last *bool, current bool) {
	if *last == current {
		return
	}
	oldValue := *last
	*last = current

	if len(h.listeners) == 0 {
		return
	}
	fns := make([]ValidationListener[D], 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	src := h.statusSrc
	h.owner.queue(func() {
		for _, fn := range fns {
			fn(src, change, oldValue, current)
		}
	})
}

func (h *helper[T, D]) queueDiagnostics() {
	if !h.diagsDirty {
		return
	}
	h.diagsDirty = false
	h.owner.queue(h.diags.fireChanged)
}

func (h *helper[T, D]) subscribe(fn ValidationListener[D]) observable.Subscription {
	if fn == nil {
		panic("constrain: nil listener")
	}

	if h.listeners == nil {
		h.listeners = make(map[int]ValidationListener[D], 1)
	}
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn

	o := h.owner
	return subscriptionFunc(func() {
		o.mu.Lock()
		delete(h.listeners, id)
		o.mu.Unlock()
	})
}

// settled blocks until no validation run is in flight, or the context is
// done. Called without the owner lock.
func (h *helper[T, D]) settled(ctx context.Context) error {
	for {
		h.owner.mu.Lock()
		if !h.validating || h.disposed {
			h.owner.mu.Unlock()
			return nil
		}
		if h.settleCh == nil {
			h.settleCh = make(chan struct{})
		}
		ch := h.settleCh
		h.owner.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// dispose cancels outstanding runs without awaiting them and detaches the
// helper from its dependencies. Idempotent; safe while validators are
// between generations.
func (h *helper[T, D]) dispose() {
	if h.disposed {
		return
	}
	h.disposed = true

	for _, v := range h.validators {
		wasInFlight := v.inFlight
		v.dispose()
		if wasInFlight && h.forward != nil {
			h.forward(evCancelled)
		}
	}
	h.count = 0
	h.validating = false

	if h.settleCh != nil {
		close(h.settleCh)
		h.settleCh = nil
	}

	for _, sub := range h.deps {
		sub.Unsubscribe()
	}
	h.deps = nil
	h.listeners = nil
}
