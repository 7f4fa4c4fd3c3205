package constrain

// mapChangeAggregator coalesces entry additions and removals recorded
// between two snapshot commits. A delete followed by a put of the same key
// collapses into a single put of the newest value. A delete always records
// the key as removed, even when it cancels a pending add: the key may exist
// in the snapshot base, and replaying the removal against a snapshot that
// never held the key is a no-op.
type mapChangeAggregator[K comparable, V any] struct {
	removed map[K]struct{}
	added   map[K]V
}

func newMapChangeAggregator[K comparable, V any]() *mapChangeAggregator[K, V] {
	return &mapChangeAggregator[K, V]{}
}

func (a *mapChangeAggregator[K, V]) addRemoved(key K) {
	delete(a.added, key)
	if a.removed == nil {
		a.removed = make(map[K]struct{}, 2)
	}
	a.removed[key] = struct{}{}
}

func (a *mapChangeAggregator[K, V]) addAdded(key K, value V) {
	delete(a.removed, key)
	if a.added == nil {
		a.added = make(map[K]V, 2)
	}
	a.added[key] = value
}

// complete finishes the current aggregation run and resets the aggregator.
func (a *mapChangeAggregator[K, V]) complete() (removed map[K]struct{}, added map[K]V) {
	removed, added = a.removed, a.added
	a.removed = nil
	a.added = nil
	return removed, added
}
