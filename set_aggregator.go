package constrain

// setChangeAggregator coalesces element additions and removals recorded
// between two snapshot commits. An element that is added and later removed
// (or removed and later re-added) cancels out and never reaches the
// snapshot.
type setChangeAggregator[E comparable] struct {
	removed map[E]struct{}
	added   map[E]struct{}
}

func newSetChangeAggregator[E comparable]() *setChangeAggregator[E] {
	return &setChangeAggregator[E]{}
}

func (a *setChangeAggregator[E]) addRemoved(element E) {
	if _, ok := a.added[element]; ok {
		delete(a.added, element)
		return
	}
	if a.removed == nil {
		a.removed = make(map[E]struct{}, 2)
	}
	a.removed[element] = struct{}{}
}

func (a *setChangeAggregator[E]) addAdded(element E) {
	if _, ok := a.removed[element]; ok {
		delete(a.removed, element)
		return
	}
	if a.added == nil {
		a.added = make(map[E]struct{}, 2)
	}
	a.added[element] = struct{}{}
}

// complete finishes the current aggregation run and resets the aggregator.
func (a *setChangeAggregator[E]) complete() (removed, added map[E]struct{}) {
	removed, added = a.removed, a.added
	a.removed = nil
	a.added = nil
	return removed, added
}
