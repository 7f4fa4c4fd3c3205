package observable

import (
	"fmt"
	"slices"
	"sync"
)

// ListChange describes one structural change to a List as a replaced range:
// the Removed elements previously occupied positions [From, From+len(Removed))
// and the Added elements now occupy [From, From+len(Added)). Pure insertions
// have no removed elements, pure removals no added ones.
type ListChange[E any] struct {
	From    int
	Removed []E
	Added   []E
}

// ReadableList is the read-only view of an observable list.
type ReadableList[E any] interface {
	Observable
	Len() int
	At(i int) E
	Get() []E
	SubscribeChanges(fn func(ListChange[E])) Subscription
}

// List is an observable list. Every mutating call fires exactly one change
// event describing the affected range, followed by an invalidation.
type List[E any] struct {
	notifier
	changes callbacks[ListChange[E]]

	vmu   sync.RWMutex
	items []E
}

// NewList returns an observable list holding the given initial elements.
func NewList[E any](items ...E) *List[E] {
	return &List[E]{items: slices.Clone(items)}
}

var _ ReadableList[int] = (*List[int])(nil)

// Len returns the number of elements.
func (l *List[E]) Len() int {
	l.vmu.RLock()
	defer l.vmu.RUnlock()
	return len(l.items)
}

// At returns the element at index i.
func (l *List[E]) At(i int) E {
	l.vmu.RLock()
	defer l.vmu.RUnlock()
	return l.items[i]
}

// Get returns a copy of the current elements.
func (l *List[E]) Get() []E {
	l.vmu.RLock()
	defer l.vmu.RUnlock()
	return slices.Clone(l.items)
}

// SubscribeChanges registers a listener for structural change events.
func (l *List[E]) SubscribeChanges(fn func(ListChange[E])) Subscription {
	return l.changes.subscribe(fn)
}

// Append adds elements at the end of the list.
func (l *List[E]) Append(items ...E) {
	l.Insert(l.Len(), items...)
}

// Insert adds elements at position i.
func (l *List[E]) Insert(i int, items ...E) {
	if len(items) == 0 {
		return
	}
	l.ReplaceRange(i, i, items...)
}

// RemoveAt removes the element at index i.
func (l *List[E]) RemoveAt(i int) {
	l.ReplaceRange(i, i+1)
}

// RemoveRange removes the elements in [from, to).
func (l *List[E]) RemoveRange(from, to int) {
	l.ReplaceRange(from, to)
}

// SetAt replaces the element at index i.
func (l *List[E]) SetAt(i int, item E) {
	l.ReplaceRange(i, i+1, item)
}

// SetAll replaces the entire contents of the list.
func (l *List[E]) SetAll(items ...E) {
	l.ReplaceRange(0, l.Len(), items...)
}

// ReplaceRange removes the elements in [from, to) and inserts items in their
// place, firing a single change event for the whole operation.
func (l *List[E]) ReplaceRange(from, to int, items ...E) {
	l.vmu.Lock()
	if from < 0 || to < from || to > len(l.items) {
		l.vmu.Unlock()
		panic(fmt.Sprintf("observable: range [%d, %d) out of bounds for list of length %d", from, to, len(l.items)))
	}

	if to == from && len(items) == 0 {
		l.vmu.Unlock()
		return
	}

	removed := append([]E{}, l.items[from:to]...)
	added := append([]E{}, items...)
	l.items = slices.Concat(l.items[:from], added, l.items[to:])
	l.vmu.Unlock()

	l.changes.fire(ListChange[E]{From: from, Removed: removed, Added: added})
	l.fire()
}
