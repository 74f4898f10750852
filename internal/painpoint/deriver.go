package painpoint

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"surveycli/internal/cleaning"
	"surveycli/internal/dataset"
)

// Observation is one row of the long-format intermediate: one respondent's
// ratings and pain score for one metric.
type Observation struct {
	Respondent   int
	Metric       int
	Importance   float64
	Satisfaction float64
	Difference   float64
}

// Result carries the deriver's outputs: the long-format observations and the
// wide frames pivoted back to one row per respondent.
type Result struct {
	// Respondents holds the respondent IDs in row order; every frame below
	// shares this order.
	Respondents []int

	// Metrics holds the metric indices present in the survey, ascending.
	Metrics []int

	// Long is the melted (respondent, metric) view used to guarantee exact
	// importance/satisfaction pairing.
	Long []Observation

	// Differences is the respondent x metric pain-score frame; column names
	// come from MetricColumn.
	Differences *dataset.Frame

	// Importance is the respondent x metric importance frame, kept for the
	// selector's threshold check.
	Importance *dataset.Frame
}

// MetricColumn names the frame column for a metric index.
func MetricColumn(index int) string {
	return "M" + strconv.Itoa(index)
}

// Derive normalizes the rating pairs and computes pain scores. The table is
// melted into one observation per (respondent, metric) so pairing is by
// construction, then pivoted back into wide frames. A missing rating on
// either side yields a missing difference; respondents are never dropped.
func Derive(ctx context.Context, t *dataset.Table, part *dataset.Partition, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(part.RatingPairs) == 0 {
		return nil, fmt.Errorf("survey has no rating pairs")
	}

	ids, err := respondentIDs(t, part.IDColumn)
	if err != nil {
		return nil, fmt.Errorf("resolve respondent IDs: %w", err)
	}

	var ratingColumns []string
	for _, pair := range part.RatingPairs {
		if pair.ImportanceColumn != "" {
			ratingColumns = append(ratingColumns, pair.ImportanceColumn)
		}
		if pair.SatisfactionColumn != "" {
			ratingColumns = append(ratingColumns, pair.SatisfactionColumn)
		}
	}
	ratings, err := cleaning.NormalizeRatingColumns(t, ratingColumns)
	if err != nil {
		return nil, fmt.Errorf("normalize ratings: %w", err)
	}

	metrics := make([]int, len(part.RatingPairs))
	columns := make([]string, len(part.RatingPairs))
	for i, pair := range part.RatingPairs {
		metrics[i] = pair.Metric
		columns[i] = MetricColumn(pair.Metric)
	}

	differences, err := dataset.NewFrame(columns, len(ids))
	if err != nil {
		return nil, err
	}
	importance, err := dataset.NewFrame(columns, len(ids))
	if err != nil {
		return nil, err
	}

	long := make([]Observation, 0, len(ids)*len(part.RatingPairs))
	missing := 0
	for row, id := range ids {
		for _, pair := range part.RatingPairs {
			imp := ratingAt(ratings, row, pair.ImportanceColumn)
			sat := ratingAt(ratings, row, pair.SatisfactionColumn)
			diff := imp - sat // NaN propagates when either side is missing

			obs := Observation{
				Respondent:   id,
				Metric:       pair.Metric,
				Importance:   imp,
				Satisfaction: sat,
				Difference:   diff,
			}
			long = append(long, obs)

			col := MetricColumn(pair.Metric)
			if err := differences.Set(row, col, diff); err != nil {
				return nil, err
			}
			if err := importance.Set(row, col, imp); err != nil {
				return nil, err
			}
			if math.IsNaN(diff) {
				missing++
			}
		}
	}

	logger.InfoContext(ctx, "pain scores derived",
		"respondents", len(ids),
		"metrics", len(metrics),
		"observations", len(long),
		"missing_scores", missing,
	)

	return &Result{
		Respondents: ids,
		Metrics:     metrics,
		Long:        long,
		Differences: differences,
		Importance:  importance,
	}, nil
}

// ratingAt fetches a normalized rating, treating an absent column as a
// missing rating.
func ratingAt(ratings *dataset.Frame, row int, column string) float64 {
	if column == "" {
		return math.NaN()
	}
	v, err := ratings.At(row, column)
	if err != nil {
		return math.NaN()
	}
	return v
}

// respondentIDs parses the ID column as unique integers.
func respondentIDs(t *dataset.Table, idColumn string) ([]int, error) {
	raw, err := t.Column(idColumn)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(raw))
	seen := make(map[int]int, len(raw))
	for i, cell := range raw {
		id, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: respondent ID %q is not an integer", i, cell)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("rows %d and %d share respondent ID %d", prev, i, id)
		}
		seen[id] = i
		ids[i] = id
	}
	return ids, nil
}
