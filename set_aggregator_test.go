package constrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAggregatorCancelsOppositeChanges(t *testing.T) {
	agg := newSetChangeAggregator[string]()

	agg.addAdded("a")
	agg.addRemoved("a")
	agg.addRemoved("b")
	agg.addAdded("b")

	removed, added := agg.complete()
	assert.Empty(t, removed)
	assert.Empty(t, added)
}

func TestSetAggregatorAccumulates(t *testing.T) {
	agg := newSetChangeAggregator[string]()

	agg.addAdded("a")
	agg.addAdded("b")
	agg.addRemoved("c")

	removed, added := agg.complete()
	assert.Equal(t, map[string]struct{}{"c": {}}, removed)
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, added)

	removed, added = agg.complete()
	assert.Empty(t, removed, "complete resets the aggregator")
	assert.Empty(t, added)
}
