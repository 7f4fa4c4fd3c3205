// Package observable provides the minimal observable primitives consumed and
// produced by the validation engine: a scalar value, a list with structural
// change events, a set, and a map. They intentionally carry no binding or
// expression layer; they exist so that constraints can declare dependencies
// and so that constrained snapshots can replay incremental changes.
//
// Mutators fire their notifications after the mutation has been applied and
// outside any internal lock, so a listener may safely call back into the
// collection. A single collection must only be mutated from one goroutine at
// a time; listeners are invoked on the mutating goroutine.
package observable

import "sync"

// Observable is anything that can signal "my value may have changed".
// Constraint dependencies are declared in terms of this interface.
type Observable interface {
	Subscribe(fn func()) Subscription
}

// Subscription is the handle returned by a subscribe call. Unsubscribe is
// idempotent.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	once sync.Once
	fn   func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.fn)
}

// notifier implements listener registration and dispatch. It is embedded by
// the concrete observables in this package.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// Subscribe registers fn to be invoked whenever the observable invalidates.
func (n *notifier) Subscribe(fn func()) Subscription {
	if fn == nil {
		panic("observable: nil listener")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func(), 1)
	}

	id := n.next
	n.next++
	n.subs[id] = fn

	return &subscription{fn: func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}}
}

// fire invokes all registered listeners. The listener set is snapshotted
// under the lock and invoked outside of it.
func (n *notifier) fire() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
