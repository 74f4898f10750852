package loader

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveycli/internal/shared/testutil"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "consumption.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEnergyCSV(t *testing.T) {
	path := writeCSV(t, `timestamp,meter,kwh
2026-01-01T00:00:00Z,main,12.5
2026-01-01 01:00:00,main,11.2
2026-01-01T00:00:00Z,annex,3.4
`)

	readings, err := LoadEnergyCSV(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	assert.Equal(t, "main", readings[0].Meter)
	assert.Equal(t, 12.5, readings[0].KWh)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), readings[0].Timestamp)

	// The plain date-time format parses too.
	assert.Equal(t, time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC), readings[1].Timestamp)
}

func TestLoadEnergyCSVSkipsMalformedRows(t *testing.T) {
	path := writeCSV(t, `timestamp,meter,kwh
2026-01-01T00:00:00Z,main,12.5
not a timestamp,main,11.2
2026-01-01T02:00:00Z,main,not a number
`)

	logger, captured := testutil.NewTestLogger(t)
	readings, err := LoadEnergyCSV(context.Background(), path, logger)
	require.NoError(t, err)

	assert.Len(t, readings, 1)
	assert.True(t, captured.ContainsMessage(slog.LevelWarn, "skipped malformed consumption rows"))
}

func TestLoadEnergyCSVErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadEnergyCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), nil)
		assert.Error(t, err)
	})

	t.Run("missing column", func(t *testing.T) {
		path := writeCSV(t, "timestamp,kwh\n2026-01-01T00:00:00Z,1.0\n")
		_, err := LoadEnergyCSV(context.Background(), path, nil)
		assert.ErrorContains(t, err, `missing column "meter"`)
	})

	t.Run("no usable rows", func(t *testing.T) {
		path := writeCSV(t, "timestamp,meter,kwh\nbad,main,1.0\n")
		_, err := LoadEnergyCSV(context.Background(), path, nil)
		assert.ErrorContains(t, err, "no usable rows")
	})
}
