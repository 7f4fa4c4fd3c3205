package constrain

import (
	"context"
	"log/slog"

	"github.com/reglet-dev/constrain/observable"
)

// MapOptions configures a guarded map.
type MapOptions[K comparable, V, D any] struct {
	// Constraints guard the map as a whole and re-run on every change.
	Constraints []Constraint[map[K]V, D]

	// ElementConstraints guard each entry's value independently.
	ElementConstraints []Constraint[V, D]

	// Logger receives engine diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Map is a mutable map guarded by whole-map and per-entry constraints.
// ConstrainedMap lags behind the source as the last contents that satisfied
// all constraints; entries put and deleted while the map was invalid or
// validating cancel out and never reach the snapshot.
type Map[K comparable, V, D any] struct {
	owner    *owner
	log      *slog.Logger
	h        *helper[map[K]V, D]
	source   *observable.Map[K, V]
	snapshot *observable.Map[K, V]
	agg      *mapChangeAggregator[K, V]

	elemConstraints []Constraint[V, D]
	elements        map[K]*ConstrainedElement[V, D]

	sub observable.Subscription
}

// NewMap creates a guarded map holding a copy of the given initial entries.
// The initial state is handled as in NewList.
func NewMap[K comparable, V, D any](initial map[K]V, initialState State, opts MapOptions[K, V, D]) *Map[K, V, D] {
	o := &owner{}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	p := &Map[K, V, D]{
		owner:           o,
		log:             log,
		source:          observable.NewMap(initial),
		snapshot:        observable.NewMap(initial),
		agg:             newMapChangeAggregator[K, V](),
		elemConstraints: opts.ElementConstraints,
	}

	p.h = newHelper(o, log, p.source.Items, opts.Constraints, initialState)
	p.h.sink = &mapSink[K, V]{agg: p.agg, out: p.snapshot}
	p.h.statusSrc = p
	p.h.extra = p.elementState
	p.h.watchDependencies(p.onDependencyChanged)

	if len(p.elemConstraints) > 0 {
		p.elements = make(map[K]*ConstrainedElement[V, D], len(initial))
		for k, v := range p.source.Items() {
			p.elements[k] = newElement(o, log, v, p.elemConstraints, initialState, p.h.notify)
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

func (p *Map[K, V, D]) onSourceChanged(ch observable.MapChange[K, V]) {
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

func (p *Map[K, V, D]) updateElement(ch observable.MapChange[K, V]) {
	if ch.HadOld {
		p.agg.addRemoved(ch.Key)
	}
	if ch.HasNew {
		p.agg.addAdded(ch.Key, ch.New)
	}

	if len(p.elemConstraints) == 0 {
		return
	}

	if ch.HadOld {
		if e, ok := p.elements[ch.Key]; ok {
			e.dispose()
			delete(p.elements, ch.Key)
		}
	}
	if ch.HasNew {
		e := newElement(p.owner, p.log, ch.New, p.elemConstraints, StateUnknown, p.h.notify)
		p.elements[ch.Key] = e
		e.validate()
	}
}

// elementState folds the per-entry outcomes into the map aggregate. Called
// with the owner lock held.
func (p *Map[K, V, D]) elementState() State {
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

func (p *Map[K, V, D]) onDependencyChanged(dep observable.Observable) {
	p.owner.perform(func() { p.h.runPass(dep) })
}

// Source returns the mutable map; all mutations are made through it.
func (p *Map[K, V, D]) Source() *observable.Map[K, V] {
	return p.source
}

// Valid reports whether every whole-map constraint and every entry holds.
func (p *Map[K, V, D]) Valid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.valid
}

// Invalid reports whether any whole-map constraint or entry is violated.
func (p *Map[K, V, D]) Invalid() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.invalid
}

// Validating reports whether any run is in flight, including entry runs.
func (p *Map[K, V, D]) Validating() bool {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.validating
}

// Diagnostics returns the diagnostic list for the whole-map constraints.
func (p *Map[K, V, D]) Diagnostics() *DiagnosticList[D] {
	return p.h.diags
}

// Element returns the validation state of the entry under key, if present.
// Only populated when element constraints are configured.
func (p *Map[K, V, D]) Element(key K) (*ConstrainedElement[V, D], bool) {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	e, ok := p.elements[key]
	return e, ok
}

// Elements returns the per-entry validation states keyed by map key.
func (p *Map[K, V, D]) Elements() map[K]*ConstrainedElement[V, D] {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	out := make(map[K]*ConstrainedElement[V, D], len(p.elements))
	for k, e := range p.elements {
		out[k] = e
	}
	return out
}

// ConstrainedMap exposes the last contents that satisfied every constraint.
func (p *Map[K, V, D]) ConstrainedMap() observable.ReadableMap[K, V] {
	return p.snapshot
}

// SubscribeValidation registers a listener for valid/invalid/validating
// transitions of the whole map.
func (p *Map[K, V, D]) SubscribeValidation(fn ValidationListener[D]) observable.Subscription {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.h.subscribe(fn)
}

// Settled blocks until no validation run is in flight, or ctx is done.
func (p *Map[K, V, D]) Settled(ctx context.Context) error {
	return p.h.settled(ctx)
}

// Dispose cancels outstanding runs, including entry runs, without awaiting
// them and detaches the map from its source and dependencies. Idempotent.
func (p *Map[K, V, D]) Dispose() {
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

var _ Status[string] = (*Map[string, int, string])(nil)
