package observable

import (
	"maps"
	"sync"
)

// MapChange describes one entry of a Map being added, replaced or removed.
// HadOld/HasNew distinguish the three cases.
type MapChange[K comparable, V any] struct {
	Key    K
	Old    V
	New    V
	HadOld bool
	HasNew bool
}

// ReadableMap is the read-only view of an observable map.
type ReadableMap[K comparable, V any] interface {
	Observable
	Len() int
	Get(key K) (V, bool)
	Items() map[K]V
	SubscribeChanges(fn func(MapChange[K, V])) Subscription
}

// Map is an observable map. Each entry mutation fires its own change event;
// a bulk SetAll fires one event per affected entry followed by a single
// invalidation.
type Map[K comparable, V any] struct {
	notifier
	changes callbacks[MapChange[K, V]]

	vmu   sync.RWMutex
	items map[K]V
}

// NewMap returns an observable map holding a copy of the given entries.
func NewMap[K comparable, V any](items map[K]V) *Map[K, V] {
	m := &Map[K, V]{items: make(map[K]V, len(items))}
	maps.Copy(m.items, items)
	return m
}

var _ ReadableMap[string, int] = (*Map[string, int])(nil)

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.vmu.RLock()
	defer m.vmu.RUnlock()
	return len(m.items)
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.vmu.RLock()
	defer m.vmu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// Items returns a copy of the current entries.
func (m *Map[K, V]) Items() map[K]V {
	m.vmu.RLock()
	defer m.vmu.RUnlock()
	out := make(map[K]V, len(m.items))
	maps.Copy(out, m.items)
	return out
}

// SubscribeChanges registers a listener for entry change events.
func (m *Map[K, V]) SubscribeChanges(fn func(MapChange[K, V])) Subscription {
	return m.changes.subscribe(fn)
}

// Put stores value under key.
func (m *Map[K, V]) Put(key K, value V) {
	m.vmu.Lock()
	old, had := m.items[key]
	if m.items == nil {
		m.items = make(map[K]V, 1)
	}
	m.items[key] = value
	m.vmu.Unlock()

	m.changes.fire(MapChange[K, V]{Key: key, Old: old, New: value, HadOld: had, HasNew: true})
	m.fire()
}

// Delete removes the entry under key, reporting whether the map changed.
func (m *Map[K, V]) Delete(key K) bool {
	m.vmu.Lock()
	old, had := m.items[key]
	if !had {
		m.vmu.Unlock()
		return false
	}
	delete(m.items, key)
	m.vmu.Unlock()

	m.changes.fire(MapChange[K, V]{Key: key, Old: old, HadOld: true})
	m.fire()
	return true
}

// SetAll replaces the contents of the map, firing one change event per
// removed, replaced or added entry.
func (m *Map[K, V]) SetAll(items map[K]V) {
	incoming := make(map[K]V, len(items))
	maps.Copy(incoming, items)

	m.vmu.Lock()
	var events []MapChange[K, V]
	for key, old := range m.items {
		if _, ok := incoming[key]; !ok {
			events = append(events, MapChange[K, V]{Key: key, Old: old, HadOld: true})
		}
	}
	for key, value := range incoming {
		old, had := m.items[key]
		events = append(events, MapChange[K, V]{Key: key, Old: old, New: value, HadOld: had, HasNew: true})
	}
	m.items = incoming
	m.vmu.Unlock()

	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		m.changes.fire(ev)
	}
	m.fire()
}
