package constrain

import (
	"context"
	"log/slog"
	"slices"

	"github.com/reglet-dev/constrain/observable"
)

// ListOptions configures a guarded list.
type ListOptions[E comparable, D any] struct {
	// Constraints guard the list as a whole and re-run on every
	// structural change.
	Constraints []Constraint[[]E, D]

	// ElementConstraints guard each element independently. Elements that
	// enter the list are validated; elements that leave have their
	// in-flight runs cancelled.
	ElementConstraints []Constraint[E, D]

	// Logger receives engine diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

// List is a mutable list guarded by whole-list and per-element constraints.
// The list is valid only when every whole-list constraint and every element
// holds; it is validating while any run is in flight.
//
// ConstrainedList lags behind the source as the last contents that
// satisfied all constraints. Changes accumulated while the list was invalid
// or validating are replayed as a single aggregated range replacement, so
// observers of the snapshot never see invalid intermediate elements.
type List[E comparable, D any] struct {
	owner    *owner
	log      *slog.Logger
	h        *helper[[]E, D]
	source   *observable.List[E]
	snapshot *observable.List[E]
	agg      *listChangeAggregator[E]

	elemConstraints []Constraint[E, D]
	elements        []*ConstrainedElement[E, D]

	sub observable.Subscription
}

// NewList creates a guarded list holding the given initial elements.
//
// With initialState StateUnknown the constraints run immediately; with
// StateValid or StateInvalid the verdict is trusted for the initial
// contents, including each element, and validation first runs on change.
func NewList[E comparable, D any](initial []E, initialState State, opts ListOptions[E, D]) *List[E, D] {
	o := &owner{}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	p := &List[E, D]{
		owner:           o,
		log:             log,
		source:          observable.NewList(initial...),
		snapshot:        observable.NewList(initial...),
		elemConstraints: opts.ElementConstraints,
	}
	p.agg = newListChangeAggregator(p.snapshot.Get)

	p.h = newHelper(o, log, p.source.Get, opts.Constraints, initialState)
	p.h.sink = &listSink[E]{agg: p.agg, out: p.snapshot}
	p.h.statusSrc = p
	p.h.extra = p.elementState
	p.h.watchDependencies(p.onDependencyChanged)

	if len(p.elemConstraints) > 0 {
		p.elements = make([]*ConstrainedElement[E, D], len(initial))
		for i, v := range initial {
			p.elements[i] = newElement(o, log, v, p.elemConstraints, initialState, p.h.notify)
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

// onSourceChanged runs one validation pass for a structural change: every
// whole-list constraint re-runs, removed elements are disposed, inserted
// elements are validated, and the change is recorded for a later snapshot
// replay.
func (p *List[E, D]) onSourceChanged(ch observable.ListChange[E]) {
	p.owner.perform(func() {
		if p.h.disposed {
			return
		}
		p.h.beginPass()
		p.h.dispatch(nil)
		p.agg.add(ch)
		p.updateElements(ch)
		p.h.endPass()
	})
}

func (p *List[E, D]) updateElements(ch observable.ListChange[E]) {
	if len(p.elemConstraints) == 0 {
		return
	}

	for _, e := range p.elements[ch.From : ch.From+len(ch.Removed)] {
		e.dispose()
	}

	inserted := make([]*ConstrainedElement[E, D], len(ch.Added))
	for i, v := range ch.Added {
		inserted[i] = newElement(p.owner, p.log, v, p.elemConstraints, StateUnknown, p.h.notify)
	}
	p.elements = slices.Concat(
		p.elements[:ch.From],
		inserted,
		p.elements[ch.From+len(ch.Removed):],
	)

	for _, e := range inserted {
		e.validate()
	}
}

// elementState folds the per-element outcomes into the list aggregate.
// Called with the owner lock held.
func (p *List[E, D]) elementState() State {
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

func (p *List[E, D]) onDependencyChanged(dep observable.Observable) {
	p.owner.perform(func() { p.h.runPass(dep) })
}

// Source returns the mutable list; all mutations are made through it.
func (p *List[E, D]) Source() *observable.List[E] {
	return p.source
}

// Valid reports whether every whole-list constraint and every element holds.
func (p *List[E, D]) Valid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.valid
}

// Invalid reports whether any whole-list constraint or element is violated.
func (p *List[E, D]) Invalid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.invalid
}

// Validating reports whether any run is in flight, including element runs.
func (p *List[E, D]) Validating() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.validating
}

// Diagnostics returns the diagnostic list for the whole-list constraints.
// Element diagnostics live on the individual ConstrainedElement values.
func (p *List[E, D]) Diagnostics() *DiagnosticList[D] {
	return p.h.diags
}

// Elements returns the per-element validation states in list order. The
// result is empty when no element constraints are configured.
func (p *List[E, D]) Elements() []*ConstrainedElement[E, D] {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return slices.Clone(p.elements)
}

// ConstrainedList exposes the last contents that satisfied every constraint.
func (p *List[E, D]) ConstrainedList() observable.ReadableList[E] {
	return p.snapshot
}

// SubscribeValidation registers a listener for valid/invalid/validating
// transitions of the whole list.
func (p *List[E, D]) SubscribeValidation(fn ValidationListener[D]) observable.Subscription {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.subscribe(fn)
}

// Settled blocks until no validation run is in flight, or ctx is done.
func (p *List[E, D]) Settled(ctx context.Context) error {
	return p.h.settled(ctx)
}

// Dispose cancels outstanding runs, including element runs, without
// awaiting them and detaches the list from its source and dependencies.
// Idempotent.
func (p *List[E, D]) Dispose() {
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

var _ Status[string] = (*List[int, string])(nil)
