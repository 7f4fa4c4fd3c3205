package constrain

import (
	"context"
	"log/slog"

	"github.com/reglet-dev/constrain/observable"
)

// SetOptions configures a guarded set.
type SetOptions[E comparable, D any] struct {
	// Constraints guard the set as a whole and re-run on every change.
	Constraints []Constraint[[]E, D]

	// ElementConstraints guard each element independently.
	ElementConstraints []Constraint[E, D]

	// Logger receives engine diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Set is a mutable set guarded by whole-set and per-element constraints.
// ConstrainedSet lags behind the source as the last contents that satisfied
// all constraints; elements added and removed while the set was invalid or
// validating cancel out and never reach the snapshot.
type Set[E comparable, D any] struct {
	owner    *owner
	log      *slog.Logger
	h        *helper[[]E, D]
	source   *observable.Set[E]
	snapshot *observable.Set[E]
	agg      *setChangeAggregator[E]

	elemConstraints []Constraint[E, D]
	elements        map[E]*ConstrainedElement[E, D]

	sub observable.Subscription
}

// NewSet creates a guarded set holding the given initial elements. The
// initial state is handled as in NewList.
func NewSet[E comparable, D any](initial []E, initialState State, opts SetOptions[E, D]) *Set[E, D] {
	o := &owner{}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	p := &Set[E, D]{
		owner:           o,
		log:             log,
		source:          observable.NewSet(initial...),
		snapshot:        observable.NewSet(initial...),
		agg:             newSetChangeAggregator[E](),
		elemConstraints: opts.ElementConstraints,
	}

	p.h = newHelper(o, log, p.source.Items, opts.Constraints, initialState)
	p.h.sink = &setSink[E]{agg: p.agg, out: p.snapshot}
	p.h.statusSrc = p
	p.h.extra = p.elementState
	p.h.watchDependencies(p.onDependencyChanged)

	if len(p.elemConstraints) > 0 {
		p.elements = make(map[E]*ConstrainedElement[E, D], len(initial))
		for _, v := range p.source.Items() {
			p.elements[v] = newElement(o, log, v, p.elemConstraints, initialState, p.h.notify)
		}
	}

	p.sub = p.source.SubscribeChanges(p.onSourceChanged)

	if initialState == StateUnknown {
		o.perform(func() {
			p.h.beginPass()
			p.h.dispatch(nil)
			for _, e := range p.elements {
				e.validate()
			}
			p.h.endPass()
		})
	}
	return p
}

func (p *Set[E, D]) onSourceChanged(ch observable.SetChange[E]) {
	p.owner.perform(func() {
		if p.h.disposed {
			return
		}
		p.h.beginPass()
		p.h.dispatch(nil)
		p.updateElement(ch)
		p.h.endPass()
	})
}

func (p *Set[E, D]) updateElement(ch observable.SetChange[E]) {
	if ch.Added {
		p.agg.addAdded(ch.Element)
	} else {
		p.agg.addRemoved(ch.Element)
	}

	if len(p.elemConstraints) == 0 {
		return
	}

	if !ch.Added {
		if e, ok := p.elements[ch.Element]; ok {
			e.dispose()
			delete(p.elements, ch.Element)
		}
		return
	}

	e := newElement(p.owner, p.log, ch.Element, p.elemConstraints, StateUnknown, p.h.notify)
	p.elements[ch.Element] = e
	e.validate()
}

// elementState folds the per-element outcomes into the set aggregate.
// Called with the owner lock held.
func (p *Set[E, D]) elementState() State {
	unknown := false
	for _, e := range p.elements {
		switch e.state() {
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

func (p *Set[E, D]) onDependencyChanged(dep observable.Observable) {
	p.owner.perform(func() { p.h.runPass(dep) })
}

// Source returns the mutable set; all mutations are made through it.
func (p *Set[E, D]) Source() *observable.Set[E] {
	return p.source
}

// Valid reports whether every whole-set constraint and every element holds.
func (p *Set[E, D]) Valid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.valid
}

// Invalid reports whether any whole-set constraint or element is violated.
func (p *Set[E, D]) Invalid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.invalid
}

// Validating reports whether any run is in flight, including element runs.
func (p *Set[E, D]) Validating() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.validating
}

// Diagnostics returns the diagnostic list for the whole-set constraints.
func (p *Set[E, D]) Diagnostics() *DiagnosticList[D] {
	return p.h.diags
}

// Element returns the validation state of one element, if present. Only
// populated when element constraints are configured.
func (p *Set[E, D]) Element(value E) (*ConstrainedElement[E, D], bool) {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	e, ok := p.elements[value]
	return e, ok
}

// Elements returns the per-element validation states in unspecified order.
func (p *Set[E, D]) Elements() []*ConstrainedElement[E, D] {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	out := make([]*ConstrainedElement[E, D], 0, len(p.elements))
	for _, e := range p.elements {
		out = append(out, e)
	}
	return out
}

// ConstrainedSet exposes the last contents that satisfied every constraint.
func (p *Set[E, D]) ConstrainedSet() observable.ReadableSet[E] {
	return p.snapshot
}

// SubscribeValidation registers a listener for valid/invalid/validating
// transitions of the whole set.
func (p *Set[E, D]) SubscribeValidation(fn ValidationListener[D]) observable.Subscription {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.subscribe(fn)
}

// Settled blocks until no validation run is in flight, or ctx is done.
func (p *Set[E, D]) Settled(ctx context.Context) error {
	return p.h.settled(ctx)
}

// Dispose cancels outstanding runs, including element runs, without
// awaiting them and detaches the set from its source and dependencies.
// Idempotent.
func (p *Set[E, D]) Dispose() {
	p.owner.perform(func() {
		if p.h.disposed {
			return
		}
		p.sub.Unsubscribe()
		for _, e := range p.elements {
			e.dispose()
		}
		p.elements = nil
		p.h.dispose()
	})
}

var _ Status[string] = (*Set[int, string])(nil)
