package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"surveycli/internal/config"
)

// RatingPair names the importance and satisfaction columns for one metric.
// Either column name may be empty when the sheet carries only one side; the
// deriver turns the absent side into a missing rating.
type RatingPair struct {
	Metric            int
	ImportanceColumn  string
	SatisfactionColumn string
}

// Partition splits the survey columns into the pipeline's logical subsets.
type Partition struct {
	IDColumn     string
	RatingPairs  []RatingPair
	Demographics []string
	Profiling    []string
	Excluded     []string
}

// PartitionColumns classifies every column of the survey table by its name
// prefix. Rating columns must carry a parseable metric index suffix
// (IMP_17, SAT_17); anything else with a rating prefix is an error rather
// than a silently mis-filed demographic.
func PartitionColumns(t *Table, idColumn string) (*Partition, error) {
	if !t.HasColumn(idColumn) {
		return nil, fmt.Errorf("survey table has no ID column %q", idColumn)
	}

	part := &Partition{IDColumn: idColumn}
	importance := make(map[int]string)
	satisfaction := make(map[int]string)

	for _, name := range t.Headers() {
		if name == idColumn {
			continue
		}
		switch role := roleFor(name); role {
		case config.RoleImportance:
			idx, err := metricIndex(name, config.PrefixImportance)
			if err != nil {
				return nil, err
			}
			importance[idx] = name
		case config.RoleSatisfaction:
			idx, err := metricIndex(name, config.PrefixSatisfaction)
			if err != nil {
				return nil, err
			}
			satisfaction[idx] = name
		case config.RoleProfiling:
			part.Profiling = append(part.Profiling, name)
		case config.RoleExcluded:
			part.Excluded = append(part.Excluded, name)
		default:
			part.Demographics = append(part.Demographics, name)
		}
	}

	metrics := make(map[int]struct{}, len(importance)+len(satisfaction))
	for idx := range importance {
		metrics[idx] = struct{}{}
	}
	for idx := range satisfaction {
		metrics[idx] = struct{}{}
	}
	indices := make([]int, 0, len(metrics))
	for idx := range metrics {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		part.RatingPairs = append(part.RatingPairs, RatingPair{
			Metric:             idx,
			ImportanceColumn:   importance[idx],
			SatisfactionColumn: satisfaction[idx],
		})
	}

	return part, nil
}

// PredictorColumns returns the demographic and profiling column names, in
// sheet order, which together form the candidate predictor pool.
func (p *Partition) PredictorColumns() []string {
	out := make([]string, 0, len(p.Demographics)+len(p.Profiling))
	out = append(out, p.Demographics...)
	out = append(out, p.Profiling...)
	return out
}

// roleFor resolves a column name against the prefix role table, longest
// prefix first.
func roleFor(name string) config.ColumnRole {
	role := config.RoleDemographic
	matched := 0
	for prefix, r := range config.PrefixRoles {
		if strings.HasPrefix(name, prefix) && len(prefix) > matched {
			role = r
			matched = len(prefix)
		}
	}
	return role
}

// metricIndex parses the metric index suffix of a rating column name and
// checks it against the questionnaire's index space.
func metricIndex(name, prefix string) (int, error) {
	suffix := strings.TrimPrefix(name, prefix)
	idx, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("rating column %q has no metric index: %w", name, err)
	}
	if idx < config.MetricIndexMin || idx > config.MetricIndexMax {
		return 0, fmt.Errorf("rating column %q: metric index %d outside [%d,%d]",
			name, idx, config.MetricIndexMin, config.MetricIndexMax)
	}
	return idx, nil
}
