package loader

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// EnergyReading is one meter observation from the consumption CSV.
type EnergyReading struct {
	Timestamp time.Time
	Meter     string
	KWh       float64
}

// Expected consumption CSV columns
const (
	energyTimestampColumn = "timestamp"
	energyMeterColumn     = "meter"
	energyKWhColumn       = "kwh"
)

// LoadEnergyCSV reads the electricity-consumption CSV into readings grouped
// later by meter. Rows with an unparseable timestamp or consumption value
// are skipped with a warning rather than failing the whole load.
func LoadEnergyCSV(ctx context.Context, path string, logger *slog.Logger) ([]EnergyReading, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open consumption file: %w", err)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file)
	if df.Err != nil {
		return nil, fmt.Errorf("parse consumption CSV: %w", df.Err)
	}

	for _, required := range []string{energyTimestampColumn, energyMeterColumn, energyKWhColumn} {
		found := false
		for _, name := range df.Names() {
			if name == required {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("consumption CSV missing column %q", required)
		}
	}

	timestamps := df.Col(energyTimestampColumn).Records()
	meters := df.Col(energyMeterColumn).Records()
	values := df.Col(energyKWhColumn).Float()

	readings := make([]EnergyReading, 0, df.Nrow())
	skipped := 0
	for i := 0; i < df.Nrow(); i++ {
		ts, err := time.Parse(time.RFC3339, timestamps[i])
		if err != nil {
			// Exports alternate between RFC3339 and plain date-time
			ts, err = time.Parse("2006-01-02 15:04:05", timestamps[i])
		}
		if err != nil || math.IsNaN(values[i]) {
			skipped++
			continue
		}
		readings = append(readings, EnergyReading{
			Timestamp: ts,
			Meter:     meters[i],
			KWh:       values[i],
		})
	}

	if skipped > 0 {
		logger.WarnContext(ctx, "skipped malformed consumption rows",
			"skipped", skipped,
			"total", df.Nrow(),
		)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("consumption CSV %s has no usable rows", path)
	}

	logger.InfoContext(ctx, "consumption data loaded",
		"path", path,
		"readings", len(readings),
	)
	return readings, nil
}
