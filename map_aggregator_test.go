package constrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapAggregatorPutThenDeleteDropsPendingAdd(t *testing.T) {
	agg := newMapChangeAggregator[string, int]()

	agg.addAdded("a", 1)
	agg.addRemoved("a")

	removed, added := agg.complete()
	assert.Equal(t, map[string]struct{}{"a": {}}, removed)
	assert.Empty(t, added)
}

func TestMapAggregatorDeleteThenPutKeepsNewValue(t *testing.T) {
	agg := newMapChangeAggregator[string, int]()

	agg.addRemoved("a")
	agg.addAdded("a", 2)

	removed, added := agg.complete()
	assert.Empty(t, removed)
	assert.Equal(t, map[string]int{"a": 2}, added)
}

func TestMapAggregatorReplaceThenDeleteRemovesKey(t *testing.T) {
	agg := newMapChangeAggregator[string, int]()

	// Put over an existing key records a removal and an add for it.
	agg.addRemoved("a")
	agg.addAdded("a", 2)
	agg.addRemoved("a")

	removed, added := agg.complete()
	assert.Equal(t, map[string]struct{}{"a": {}}, removed)
	assert.Empty(t, added)
}

func TestMapAggregatorRepeatedPutKeepsLatest(t *testing.T) {
	agg := newMapChangeAggregator[string, int]()

	agg.addAdded("a", 1)
	agg.addAdded("a", 2)
	agg.addRemoved("b")

	removed, added := agg.complete()
	assert.Equal(t, map[string]struct{}{"b": {}}, removed)
	assert.Equal(t, map[string]int{"a": 2}, added)

	removed, added = agg.complete()
	assert.Empty(t, removed, "complete resets the aggregator")
	assert.Empty(t, added)
}
