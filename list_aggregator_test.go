package constrain

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reglet-dev/constrain/observable"
)

// words turns "0 1 2" into its elements; "" is the empty list.
func words(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

func addRange(a *listChangeAggregator[string], from int, added string) {
	a.add(observable.ListChange[string]{From: from, Added: words(added)})
}

func removeRange(a *listChangeAggregator[string], from, size int) {
	a.add(observable.ListChange[string]{From: from, Removed: make([]string, size)})
}

func assertAggregate(t *testing.T, a *listChangeAggregator[string], base []string, from, removeSize int, added string) {
	t.Helper()

	patch := a.peek()
	assert.Equal(t, from, patch.from, "from")
	assert.Equal(t, removeSize, patch.removeSize, "removeSize")
	assert.Equal(t, added, strings.Join(patch.added, " "), "added")

	// Applying the aggregate to the base list must reproduce the net result.
	applied := slices.Concat(base[:patch.from], patch.added, base[patch.from+patch.removeSize:])
	expected := slices.Concat(base[:from], words(added), base[from+removeSize:])
	assert.Equal(t, expected, applied)
}

func TestListAggregatorAddChanges(t *testing.T) {
	base := words("0 1 2 3 4 5")
	agg := newListChangeAggregator(func() []string { return base })

	// 0 1 2 +[a b c] 3 4 5
	addRange(agg, 3, "a b c")
	assertAggregate(t, agg, base, 3, 0, "a b c")

	// 0 +[d] 1 2 a b c 3 4 5
	addRange(agg, 1, "d")
	assertAggregate(t, agg, base, 1, 2, "d 1 2 a b c")

	// 0 d 1 2 +[x y] a b c 3 4 5
	addRange(agg, 4, "x y")
	assertAggregate(t, agg, base, 1, 2, "d 1 2 x y a b c")

	// 0 d 1 2 x y a b c 3 4 +[q] 5
	addRange(agg, 11, "q")
	assertAggregate(t, agg, base, 1, 4, "d 1 2 x y a b c 3 4 q")

	// 0 d 1 2 x y a b c 3 4 q 5 +[z]
	addRange(agg, 13, "z")
	assertAggregate(t, agg, base, 1, 5, "d 1 2 x y a b c 3 4 q 5 z")
}

func TestListAggregatorRemoveLeftOfSublist(t *testing.T) {
	t.Run("partly covered", func(t *testing.T) {
		base := words("0 1 2 3 4 5")
		agg := newListChangeAggregator(func() []string { return base })

		addRange(agg, 3, "a b")
		assertAggregate(t, agg, base, 3, 0, "a b")

		// 0 -[1 2 a] b 3 4 5
		removeRange(agg, 1, 3)
		assertAggregate(t, agg, base, 1, 2, "b")
	})

	t.Run("fully covered", func(t *testing.T) {
		base := words("0 1 2 3 4 5")
		agg := newListChangeAggregator(func() []string { return base })

		addRange(agg, 3, "a b")
		assertAggregate(t, agg, base, 3, 0, "a b")

		// 0 -[1 2 a b 3] 4 5
		removeRange(agg, 1, 5)
		assertAggregate(t, agg, base, 1, 3, "")
	})
}

func TestListAggregatorRemoveSublistSections(t *testing.T) {
	tests := []struct {
		name       string
		removeFrom int
		removeSize int
		added      string
	}{
		{name: "leading part", removeFrom: 2, removeSize: 4, added: "e"},
		{name: "middle part", removeFrom: 3, removeSize: 3, added: "a e"},
		{name: "trailing part", removeFrom: 4, removeSize: 3, added: "a b"},
		{name: "entire sublist", removeFrom: 2, removeSize: 5, added: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := words("0 1 2 3")
			agg := newListChangeAggregator(func() []string { return base })

			// 0 1 +[a b c d e] 2 3
			addRange(agg, 2, "a b c d e")
			assertAggregate(t, agg, base, 2, 0, "a b c d e")

			removeRange(agg, tt.removeFrom, tt.removeSize)
			assertAggregate(t, agg, base, 2, 0, tt.added)
		})
	}
}

func TestListAggregatorRemoveRightOfPartlyCoveredSublist(t *testing.T) {
	t.Run("single trailing element", func(t *testing.T) {
		base := words("0 1 2 3 4 5")
		agg := newListChangeAggregator(func() []string { return base })

		addRange(agg, 2, "a b")
		assertAggregate(t, agg, base, 2, 0, "a b")

		// 0 1 a -[b 2 3 4] 5
		removeRange(agg, 3, 4)
		assertAggregate(t, agg, base, 2, 3, "a")
	})

	t.Run("several trailing elements", func(t *testing.T) {
		base := words("0 1 2 3 4 5")
		agg := newListChangeAggregator(func() []string { return base })

		addRange(agg, 2, "a b c d")
		assertAggregate(t, agg, base, 2, 0, "a b c d")

		// 0 1 a -[b c d 2] 3 4 5
		removeRange(agg, 3, 4)
		assertAggregate(t, agg, base, 2, 1, "a")
	})
}

func TestListAggregatorRemoveRightOfSublist(t *testing.T) {
	t.Run("some elements", func(t *testing.T) {
		base := words("0 1 2 3 4 5")
		agg := newListChangeAggregator(func() []string { return base })

		addRange(agg, 2, "a b")
		assertAggregate(t, agg, base, 2, 0, "a b")

		// 0 1 a b 2 -[3 4] 5
		removeRange(agg, 5, 2)
		assertAggregate(t, agg, base, 2, 3, "a b 2")
	})

	t.Run("all elements", func(t *testing.T) {
		base := words("0 1 2 3 4 5")
		agg := newListChangeAggregator(func() []string { return base })

		addRange(agg, 2, "a b")
		assertAggregate(t, agg, base, 2, 0, "a b")

		// 0 1 a b -[2 3 4 5]
		removeRange(agg, 4, 4)
		assertAggregate(t, agg, base, 2, 4, "a b")
	})
}

func TestListAggregatorRepeatedAddAndRemoveChanges(t *testing.T) {
	base := words("0 1 2 3 4 5")
	agg := newListChangeAggregator(func() []string { return base })

	// 0 1 +[a b] 2 3 4 5
	addRange(agg, 2, "a b")
	assertAggregate(t, agg, base, 2, 0, "a b")

	// -[0 1 a b 2 3] 4 5
	removeRange(agg, 0, 6)
	assertAggregate(t, agg, base, 0, 4, "")

	// 4 +[x y z] 5
	addRange(agg, 1, "x y z")
	assertAggregate(t, agg, base, 0, 5, "4 x y z")

	// 4 x -[y z 5]
	removeRange(agg, 2, 3)
	assertAggregate(t, agg, base, 0, 6, "4 x")

	// -[4 x]
	removeRange(agg, 0, 2)
	assertAggregate(t, agg, base, 0, 6, "")

	// +[0 1 2 3 4 5] rebuilds the base contents, so the net change is empty.
	addRange(agg, 0, "0 1 2 3 4 5")
	assertAggregate(t, agg, base, 0, 0, "")
}

func TestListAggregatorComplete(t *testing.T) {
	base := words("0 1 2")
	agg := newListChangeAggregator(func() []string { return base })

	_, ok := agg.complete()
	assert.False(t, ok, "no recorded changes")

	addRange(agg, 1, "a")
	patch, ok := agg.complete()
	assert.True(t, ok)
	assert.Equal(t, listPatch[string]{from: 1, removeSize: 0, added: []string{"a"}}, patch)

	_, ok = agg.complete()
	assert.False(t, ok, "complete resets the aggregator")

	// Rebuilding exactly the base contents is treated as no change.
	removeRange(agg, 0, 3)
	addRange(agg, 0, "0 1 2")
	_, ok = agg.complete()
	assert.False(t, ok)
}
