package constrain

import (
	"slices"

	"github.com/reglet-dev/constrain/observable"
)

// listPatch is the aggregate of any number of list changes, expressed as a
// single replaced range relative to the snapshot list: removeSize elements
// starting at from are replaced by added.
type listPatch[E any] struct {
	from       int
	removeSize int
	added      []E
}

// listChangeAggregator coalesces the structural changes recorded between two
// snapshot commits into one listPatch. Because any number of changes can
// happen before all constraints are satisfied, replaying them one by one
// would surface invalid intermediate elements on the snapshot; aggregation
// elides elements that were added and later removed, so the snapshot only
// ever sees the net change.
//
// All changes are expressed relative to the base list (the snapshot as of
// the previous commit), read through source.
type listChangeAggregator[E comparable] struct {
	source     func() []E
	from       int
	removeSize int
	added      []E
}

func newListChangeAggregator[E comparable](source func() []E) *listChangeAggregator[E] {
	return &listChangeAggregator[E]{source: source, from: -1}
}

// add records one structural change of the live list. A replacement is
// composed as a removal followed by an insertion at the same position.
func (a *listChangeAggregator[E]) add(ch observable.ListChange[E]) {
	if len(ch.Removed) > 0 {
		a.removeRange(ch.From, len(ch.Removed))
	}
	if len(ch.Added) > 0 {
		a.addRange(ch.From, ch.Added)
	}
}

// complete finishes the current aggregation run and resets the aggregator.
// It reports ok=false when the net change is empty, including the case
// where the recorded changes rebuilt exactly the base contents.
func (a *listChangeAggregator[E]) complete() (listPatch[E], bool) {
	from, removeSize, added := a.from, a.removeSize, a.added
	a.from = -1
	a.removeSize = 0
	a.added = nil

	if from == -1 {
		return listPatch[E]{}, false
	}

	src := a.source()
	if removeSize == len(src) && len(added) == len(src) && slices.Equal(src, added) {
		return listPatch[E]{}, false
	}

	return listPatch[E]{from: from, removeSize: removeSize, added: added}, true
}

// peek returns the current aggregate without completing the run.
func (a *listChangeAggregator[E]) peek() listPatch[E] {
	if a.from == -1 {
		return listPatch[E]{}
	}
	src := a.source()
	if a.removeSize == len(src) && len(a.added) == len(src) && slices.Equal(src, a.added) {
		return listPatch[E]{}
	}
	return listPatch[E]{from: a.from, removeSize: a.removeSize, added: slices.Clone(a.added)}
}

func (a *listChangeAggregator[E]) addRange(cFrom int, elements []E) {
	src := a.source()

	switch {
	case a.from == -1:
		a.from = cFrom
		a.added = slices.Clone(elements)

	case cFrom <= a.from:
		// Insertion at or left of the tracked range: the base elements
		// between the insertion point and the old range boundary become
		// part of the added run as well.
		if cFrom < a.from {
			a.removeSize = max(a.removeSize, a.from-cFrom+a.removeSize)
		}
		head := slices.Clone(elements)
		head = append(head, src[cFrom:a.from]...)
		a.added = append(head, a.added...)
		a.from = cFrom

	case cFrom <= a.from+len(a.added):
		// Insertion inside the tracked added run.
		a.added = slices.Insert(a.added, cFrom-a.from, elements...)

	default:
		// Insertion right of the tracked range: extend the run across the
		// intervening base elements.
		sourceIndex := cFrom - len(a.added) + a.removeSize
		a.added = append(a.added, src[a.from+a.removeSize:sourceIndex]...)
		a.added = append(a.added, elements...)
		a.removeSize = sourceIndex - a.from
	}
}

func (a *listChangeAggregator[E]) removeRange(cFrom, cRemoveSize int) {
	src := a.source()

	switch {
	case a.from == -1:
		a.from = cFrom
		a.removeSize = cRemoveSize

	case cFrom < a.from:
		// Removal starting left of the tracked range; it may eat into the
		// head of the added run.
		if cFrom+cRemoveSize > a.from && len(a.added) > 0 {
			addedFrom := a.from - cFrom
			addedTo := min(len(a.added), cRemoveSize-addedFrom)
			if addedTo > 0 {
				a.added = slices.Delete(a.added, 0, addedTo)
				cRemoveSize -= addedTo
			}
		}
		a.removeSize = max(a.removeSize, cRemoveSize)
		a.from = cFrom

	default:
		// Removal at or right of the tracked range start; the covered part
		// of the added run disappears entirely, and base elements between
		// the tracked range and the removal become part of the run.
		addedFrom := cFrom - a.from
		addedTo := min(cRemoveSize+addedFrom, len(a.added))
		if addedTo > addedFrom {
			a.added = slices.Delete(a.added, addedFrom, addedTo)
			cRemoveSize -= addedTo - addedFrom
		}

		sourceIndex := cFrom - len(a.added) + a.removeSize
		if sourceIndex > a.from+a.removeSize {
			a.added = append(a.added, src[a.from+a.removeSize:sourceIndex]...)
		}
		a.removeSize = max(a.removeSize, sourceIndex+cRemoveSize-a.from)
	}
}
