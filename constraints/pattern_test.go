package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/constrain"
	"github.com/reglet-dev/constrain/observable"
)

func TestMatches(t *testing.T) {
	c := Matches(`^[a-z]+$`)

	assert.True(t, checkString(t, c, "abc").IsValid())

	res := checkString(t, c, "abc1")
	assert.False(t, res.IsValid())
	diag, ok := res.Diagnostic()
	require.True(t, ok)
	assert.Equal(t, "matches", diag.Code)
}

func TestNotMatches(t *testing.T) {
	c := NotMatches(`\s`)

	assert.True(t, checkString(t, c, "abc").IsValid())
	assert.False(t, checkString(t, c, "a b").IsValid())
}

func TestMatchesInvalidPatternPanics(t *testing.T) {
	assert.Panics(t, func() { Matches(`(`) })
}

func TestMatchesObservable(t *testing.T) {
	pattern := observable.NewValue(`^[a-z]+$`)

	v := constrain.NewValue("abc", constrain.StateUnknown, constrain.ValueOptions[string, Diagnostic]{
		Constraints: []constrain.Constraint[string, Diagnostic]{MatchesObservable(pattern)},
	})
	defer v.Dispose()

	require.True(t, v.Valid())

	// Changing the pattern revalidates the current value.
	pattern.Set(`^[0-9]+$`)
	assert.True(t, v.Invalid())

	v.Set("42")
	assert.True(t, v.Valid())

	// A pattern that fails to compile makes the value invalid rather than
	// failing the property.
	pattern.Set(`(`)
	assert.True(t, v.Invalid())
	diags := v.Diagnostics().Invalid()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "invalid pattern")
}

func TestPatternCacheRecompilesOnChange(t *testing.T) {
	cache := &patternCache{}

	re1, err := cache.get(`^a$`)
	require.NoError(t, err)
	re2, err := cache.get(`^a$`)
	require.NoError(t, err)
	assert.Same(t, re1, re2, "an unchanged pattern reuses the compiled form")

	re3, err := cache.get(`^b$`)
	require.NoError(t, err)
	assert.True(t, re3.MatchString("b"))

	_, err = cache.get(`(`)
	assert.Error(t, err)
}
