package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	t.Run("pads short rows", func(t *testing.T) {
		table, err := NewTable([]string{"ID", "A", "B"}, [][]string{
			{"1", "x"},
			{"2", "y", "z"},
		})
		require.NoError(t, err)

		cell, err := table.Cell(0, "B")
		require.NoError(t, err)
		assert.Equal(t, "", cell)

		missing, err := table.IsMissing(0, "B")
		require.NoError(t, err)
		assert.True(t, missing)
	})

	t.Run("rejects duplicate headers", func(t *testing.T) {
		_, err := NewTable([]string{"ID", "A", "A"}, nil)
		assert.Error(t, err)
	})

	t.Run("rejects overlong rows", func(t *testing.T) {
		_, err := NewTable([]string{"ID"}, [][]string{{"1", "extra"}})
		assert.Error(t, err)
	})

	t.Run("trims cells", func(t *testing.T) {
		table, err := NewTable([]string{"ID"}, [][]string{{"  7  "}})
		require.NoError(t, err)

		col, err := table.Column("ID")
		require.NoError(t, err)
		assert.Equal(t, []string{"7"}, col)
	})
}

func TestPartitionColumns(t *testing.T) {
	table, err := NewTable(
		[]string{"ID", "IMP_1", "SAT_1", "IMP_2", "AGE_BAND", "PR1_FREQ_VISITS", "X_INTERNAL"},
		[][]string{{"1", "", "", "", "", "", ""}},
	)
	require.NoError(t, err)

	part, err := PartitionColumns(table, "ID")
	require.NoError(t, err)

	require.Len(t, part.RatingPairs, 2)
	assert.Equal(t, 1, part.RatingPairs[0].Metric)
	assert.Equal(t, "IMP_1", part.RatingPairs[0].ImportanceColumn)
	assert.Equal(t, "SAT_1", part.RatingPairs[0].SatisfactionColumn)

	// Metric 2 has no satisfaction column; the pair survives with one side.
	assert.Equal(t, 2, part.RatingPairs[1].Metric)
	assert.Equal(t, "", part.RatingPairs[1].SatisfactionColumn)

	assert.Equal(t, []string{"AGE_BAND"}, part.Demographics)
	assert.Equal(t, []string{"PR1_FREQ_VISITS"}, part.Profiling)
	assert.Equal(t, []string{"X_INTERNAL"}, part.Excluded)
	assert.Equal(t, []string{"AGE_BAND", "PR1_FREQ_VISITS"}, part.PredictorColumns())
}

func TestPartitionColumnsErrors(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{"missing ID column", []string{"IMP_1"}},
		{"rating column without index", []string{"ID", "IMP_FOO"}},
		{"metric index out of range", []string{"ID", "IMP_999"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.headers, [][]string{make([]string, len(tt.headers))})
			require.NoError(t, err)
			_, err = PartitionColumns(table, "ID")
			assert.Error(t, err)
		})
	}
}

func TestLabelSet(t *testing.T) {
	ls := NewLabelSet(map[int]string{17: "Queue time"}, map[string]string{"PR1_A": "How often?"})

	label, err := ls.MetricLabel(17)
	require.NoError(t, err)
	assert.Equal(t, "Queue time", label)

	_, err = ls.MetricLabel(18)
	assert.ErrorIs(t, err, ErrLabelMissing)

	assert.Equal(t, "How often?", ls.ProfilingLabel("PR1_A"))
	assert.Equal(t, "PR1_B", ls.ProfilingLabel("PR1_B"))
}
