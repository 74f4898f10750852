package painpoint

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"surveycli/internal/dataset"
)

// SelectedMetric is one metric retained by the selector, with its label and
// the aggregates that ranked it.
type SelectedMetric struct {
	Index          int
	Label          string
	MeanImportance float64
	MeanDifference float64
	// Scored counts the respondents with a non-missing pain score.
	Scored int
}

// SelectTop filters metrics by mean importance and ranks the survivors by
// mean pain score, descending, ties broken by ascending metric index. At
// most topN metrics are returned. Every returned metric must resolve a
// label; a missing label is an error, not a skip.
func SelectTop(ctx context.Context, res *Result, labels *dataset.LabelSet, threshold float64, topN int, logger *slog.Logger) ([]SelectedMetric, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if topN <= 0 {
		return nil, fmt.Errorf("topN must be positive, got %d", topN)
	}

	var retained []SelectedMetric
	dropped := 0
	for _, metric := range res.Metrics {
		col := MetricColumn(metric)

		impCol, err := res.Importance.Column(col)
		if err != nil {
			return nil, err
		}
		meanImp, _ := meanSkipNaN(impCol)
		if math.IsNaN(meanImp) || meanImp < threshold {
			dropped++
			continue
		}

		diffCol, err := res.Differences.Column(col)
		if err != nil {
			return nil, err
		}
		meanDiff, scored := meanSkipNaN(diffCol)
		if math.IsNaN(meanDiff) {
			dropped++
			continue
		}

		retained = append(retained, SelectedMetric{
			Index:          metric,
			MeanImportance: meanImp,
			MeanDifference: meanDiff,
			Scored:         scored,
		})
	}

	if len(retained) == 0 {
		return nil, fmt.Errorf("no metric passed the importance threshold %.2f", threshold)
	}

	sort.Slice(retained, func(i, j int) bool {
		if retained[i].MeanDifference != retained[j].MeanDifference {
			return retained[i].MeanDifference > retained[j].MeanDifference
		}
		return retained[i].Index < retained[j].Index
	})

	if len(retained) > topN {
		retained = retained[:topN]
	}

	for i := range retained {
		label, err := labels.MetricLabel(retained[i].Index)
		if err != nil {
			return nil, fmt.Errorf("selected metric %d: %w", retained[i].Index, err)
		}
		retained[i].Label = label
	}

	logger.InfoContext(ctx, "metrics selected",
		"threshold", threshold,
		"dropped", dropped,
		"selected", len(retained),
	)
	return retained, nil
}

// meanSkipNaN averages the non-missing values, returning the count used.
// All-missing yields NaN.
func meanSkipNaN(values []float64) (float64, int) {
	sum := 0.0
	count := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return math.NaN(), 0
	}
	return sum / float64(count), count
}
