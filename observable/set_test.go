package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAddRemove(t *testing.T) {
	s := NewSet("a")

	var changes []SetChange[string]
	s.SubscribeChanges(func(ch SetChange[string]) { changes = append(changes, ch) })

	assert.True(t, s.Add("b"))
	assert.False(t, s.Add("b"), "duplicate add should not change the set")
	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"), "removing an absent element should not change the set")

	assert.Equal(t, []SetChange[string]{
		{Element: "b", Added: true},
		{Element: "a", Added: false},
	}, changes)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("a"))
}

func TestSetSetAll(t *testing.T) {
	s := NewSet("a", "b")

	removed := map[string]bool{}
	added := map[string]bool{}
	s.SubscribeChanges(func(ch SetChange[string]) {
		if ch.Added {
			added[ch.Element] = true
		} else {
			removed[ch.Element] = true
		}
	})

	invalidations := 0
	s.Subscribe(func() { invalidations++ })

	s.SetAll("b", "c")

	assert.Equal(t, map[string]bool{"a": true}, removed)
	assert.Equal(t, map[string]bool{"c": true}, added)
	assert.Equal(t, 1, invalidations, "bulk replace should invalidate once")
	assert.ElementsMatch(t, []string{"b", "c"}, s.Items())
}

func TestSetSetAllNoChange(t *testing.T) {
	s := NewSet("a")

	fired := false
	s.Subscribe(func() { fired = true })

	s.SetAll("a")

	assert.False(t, fired)
}
