package dataset

import (
	"errors"
	"fmt"
)

// ErrLabelMissing marks a metric index with no entry in the label lookup.
// Label resolution is mandatory for reporting, so callers treat this as a
// hard error, never skip the metric.
var ErrLabelMissing = errors.New("metric label missing")

// LabelSet resolves human-readable labels for metric indices and profiling
// columns, loaded from the workbook's lookup sheets. Immutable once loaded.
type LabelSet struct {
	metrics   map[int]string
	profiling map[string]string
}

// NewLabelSet builds a label set from the two lookup maps. The profiling map
// may be nil.
func NewLabelSet(metrics map[int]string, profiling map[string]string) *LabelSet {
	m := make(map[int]string, len(metrics))
	for k, v := range metrics {
		m[k] = v
	}
	p := make(map[string]string, len(profiling))
	for k, v := range profiling {
		p[k] = v
	}
	return &LabelSet{metrics: m, profiling: p}
}

// MetricLabel returns the label for a metric index, or ErrLabelMissing.
func (ls *LabelSet) MetricLabel(index int) (string, error) {
	label, ok := ls.metrics[index]
	if !ok || label == "" {
		return "", fmt.Errorf("metric %d: %w", index, ErrLabelMissing)
	}
	return label, nil
}

// ProfilingLabel returns the label for a profiling column, falling back to
// the column name itself when no entry exists. Profiling labels are
// cosmetic, unlike metric labels.
func (ls *LabelSet) ProfilingLabel(column string) string {
	if label, ok := ls.profiling[column]; ok && label != "" {
		return label
	}
	return column
}

// NumMetrics returns the number of metric labels loaded.
func (ls *LabelSet) NumMetrics() int { return len(ls.metrics) }
