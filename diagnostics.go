package constrain

import (
	"sync"

	"github.com/reglet-dev/constrain/observable"
)

// DiagnosticList is the slot-ordered collection of diagnostics produced by a
// validation surface. Each constraint occupies one fixed slot, in declaration
// order; a slot is empty while its constraint's latest result carries no
// diagnostic, and overwritten (never merged) when a new diagnostic arrives.
// The valid and invalid subsets are filtered by the validity of the
// producing constraint's last result.
//
// A DiagnosticList fires one invalidation per consolidated mutation of the
// owning property and is safe for concurrent reads.
type DiagnosticList[D any] struct {
	mu      sync.RWMutex
	entries []diagnosticEntry[D] // sorted by slot

	smu  sync.Mutex
	next int
	subs map[int]func()
}

type diagnosticEntry[D any] struct {
	slot  int
	value D
	valid bool
}

// Len returns the number of occupied slots.
func (l *DiagnosticList[D]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// All returns every diagnostic in slot order.
func (l *DiagnosticList[D]) All() []D {
	return l.filtered(func(e diagnosticEntry[D]) bool { return true })
}

// Valid returns the diagnostics whose producing constraint last resolved
// valid, in slot order.
func (l *DiagnosticList[D]) Valid() []D {
	return l.filtered(func(e diagnosticEntry[D]) bool { return e.valid })
}

// Invalid returns the diagnostics whose producing constraint last resolved
// invalid, in slot order.
func (l *DiagnosticList[D]) Invalid() []D {
	return l.filtered(func(e diagnosticEntry[D]) bool { return !e.valid })
}

// At returns the diagnostic occupying the given constraint slot, if any.
func (l *DiagnosticList[D]) At(slot int) (D, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.slot == slot {
			return e.value, true
		}
	}
	var zero D
	return zero, false
}

// IsValid reports whether the diagnostic in the given slot was produced by a
// valid result. It is false for empty slots.
func (l *DiagnosticList[D]) IsValid(slot int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.slot == slot {
			return e.valid
		}
	}
	return false
}

// Subscribe registers fn to be invoked after the list content changed.
func (l *DiagnosticList[D]) Subscribe(fn func()) observable.Subscription {
	if fn == nil {
		panic("constrain: nil listener")
	}

	l.smu.Lock()
	defer l.smu.Unlock()

	if l.subs == nil {
		l.subs = make(map[int]func(), 1)
	}
	id := l.next
	l.next++
	l.subs[id] = fn

	return subscriptionFunc(func() {
		l.smu.Lock()
		delete(l.subs, id)
		l.smu.Unlock()
	})
}

func (l *DiagnosticList[D]) filtered(keep func(diagnosticEntry[D]) bool) []D {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]D, 0, len(l.entries))
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e.value)
		}
	}
	return out
}

// set stores a diagnostic for the given slot, reporting whether the list
// changed. Called with the owner lock held.
func (l *DiagnosticList[D]) set(slot int, value D, valid bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := diagnosticEntry[D]{slot: slot, value: value, valid: valid}
	for i, e := range l.entries {
		if e.slot == slot {
			l.entries[i] = entry
			return true
		}
		if e.slot > slot {
			l.entries = append(l.entries[:i], append([]diagnosticEntry[D]{entry}, l.entries[i:]...)...)
			return true
		}
	}
	l.entries = append(l.entries, entry)
	return true
}

// clear empties the given slot, reporting whether the list changed. Called
// with the owner lock held.
func (l *DiagnosticList[D]) clear(slot int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.slot == slot {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// fireChanged invokes the subscribers. Called outside the owner lock.
func (l *DiagnosticList[D]) fireChanged() {
	l.smu.Lock()
	fns := make([]func(), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.smu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }
