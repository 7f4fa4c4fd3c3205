package observable

import (
	"maps"
	"slices"
	"sync"
)

// SetChange describes a single element entering or leaving a Set.
type SetChange[E comparable] struct {
	Element E
	Added   bool
}

// ReadableSet is the read-only view of an observable set.
type ReadableSet[E comparable] interface {
	Observable
	Len() int
	Has(item E) bool
	Items() []E
	SubscribeChanges(fn func(SetChange[E])) Subscription
}

// Set is an observable set. Each element added or removed fires its own
// change event; a bulk SetAll fires one event per affected element followed
// by a single invalidation.
type Set[E comparable] struct {
	notifier
	changes callbacks[SetChange[E]]

	vmu   sync.RWMutex
	items map[E]struct{}
}

// NewSet returns an observable set holding the given initial elements.
func NewSet[E comparable](items ...E) *Set[E] {
	s := &Set[E]{items: make(map[E]struct{}, len(items))}
	for _, item := range items {
		s.items[item] = struct{}{}
	}
	return s
}

var _ ReadableSet[int] = (*Set[int])(nil)

// Len returns the number of elements.
func (s *Set[E]) Len() int {
	s.vmu.RLock()
	defer s.vmu.RUnlock()
	return len(s.items)
}

// Has reports whether the set contains item.
func (s *Set[E]) Has(item E) bool {
	s.vmu.RLock()
	defer s.vmu.RUnlock()
	_, ok := s.items[item]
	return ok
}

// Items returns the elements in unspecified order.
func (s *Set[E]) Items() []E {
	s.vmu.RLock()
	defer s.vmu.RUnlock()
	return slices.Collect(maps.Keys(s.items))
}

// SubscribeChanges registers a listener for element change events.
func (s *Set[E]) SubscribeChanges(fn func(SetChange[E])) Subscription {
	return s.changes.subscribe(fn)
}

// Add inserts item, reporting whether the set changed.
func (s *Set[E]) Add(item E) bool {
	s.vmu.Lock()
	if _, ok := s.items[item]; ok {
		s.vmu.Unlock()
		return false
	}
	s.items[item] = struct{}{}
	s.vmu.Unlock()

	s.changes.fire(SetChange[E]{Element: item, Added: true})
	s.fire()
	return true
}

// Remove deletes item, reporting whether the set changed.
func (s *Set[E]) Remove(item E) bool {
	s.vmu.Lock()
	if _, ok := s.items[item]; !ok {
		s.vmu.Unlock()
		return false
	}
	delete(s.items, item)
	s.vmu.Unlock()

	s.changes.fire(SetChange[E]{Element: item, Added: false})
	s.fire()
	return true
}

// SetAll replaces the contents of the set, firing removal events for
// elements that leave and addition events for elements that enter.
func (s *Set[E]) SetAll(items ...E) {
	incoming := make(map[E]struct{}, len(items))
	for _, item := range items {
		incoming[item] = struct{}{}
	}

	s.vmu.Lock()
	var removed, added []E
	for item := range s.items {
		if _, ok := incoming[item]; !ok {
			removed = append(removed, item)
		}
	}
	for item := range incoming {
		if _, ok := s.items[item]; !ok {
			added = append(added, item)
		}
	}
	s.items = incoming
	s.vmu.Unlock()

	if len(removed) == 0 && len(added) == 0 {
		return
	}

	for _, item := range removed {
		s.changes.fire(SetChange[E]{Element: item, Added: false})
	}
	for _, item := range added {
		s.changes.fire(SetChange[E]{Element: item, Added: true})
	}
	s.fire()
}
