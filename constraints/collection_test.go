package constraints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForList(t *testing.T) {
	c := ForList(NotEmpty())

	res, err := c.Check(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, res.IsValid())

	res, err = c.Check(context.Background(), []string{"a", "", ""})
	require.NoError(t, err)
	assert.False(t, res.IsValid())

	diag, ok := res.Diagnostic()
	require.True(t, ok)
	assert.Equal(t, "not_empty", diag.Code, "the lowest-indexed failure is reported")

	res, err = c.Check(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.IsValid(), "an empty list is vacuously valid")
}

func TestForSet(t *testing.T) {
	c := ForSet(GreaterThan(0))

	res, err := c.Check(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, res.IsValid())

	res, err = c.Check(context.Background(), []int{1, -1})
	require.NoError(t, err)
	assert.False(t, res.IsValid())
}

func TestForMap(t *testing.T) {
	c := ForMap[string](NotBlank())

	res, err := c.Check(context.Background(), map[string]string{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.True(t, res.IsValid())

	res, err = c.Check(context.Background(), map[string]string{"a": "x", "b": " "})
	require.NoError(t, err)
	assert.False(t, res.IsValid())

	diag, ok := res.Diagnostic()
	require.True(t, ok)
	assert.Equal(t, "not_blank", diag.Code)
}
