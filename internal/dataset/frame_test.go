package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	frame, err := NewFrame([]string{"a", "b"}, 3)
	require.NoError(t, err)

	// New frames start fully missing.
	assert.Equal(t, 6, frame.CountMissing())

	require.NoError(t, frame.SetColumn("a", []float64{1, 2, 3}))
	require.NoError(t, frame.Set(1, "b", 9))

	v, err := frame.At(1, "b")
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	col, err := frame.Column("b")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(col[0]))
	assert.Equal(t, 9.0, col[1])
	assert.Equal(t, 2, frame.CountMissing())

	t.Run("select copies columns", func(t *testing.T) {
		sub, err := frame.Select([]string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, sub.Columns())

		// Mutating the selection must not touch the source.
		require.NoError(t, sub.Set(0, "a", 100))
		orig, err := frame.At(0, "a")
		require.NoError(t, err)
		assert.Equal(t, 1.0, orig)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := frame.Column("nope")
		assert.Error(t, err)
	})

	t.Run("length mismatch", func(t *testing.T) {
		assert.Error(t, frame.SetColumn("a", []float64{1}))
	})
}
