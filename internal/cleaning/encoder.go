package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"surveycli/internal/config"
	"surveycli/internal/dataset"
)

// columnKind classifies a demographic column before any mutation.
type columnKind int

const (
	kindNumeric columnKind = iota
	kindBinary
	kindOrdered
	kindCategory
)

// Encoder converts demographic and profiling columns into a fully numeric,
// standardized, imputed frame ready for clustering and regression.
type Encoder struct {
	mappings config.OrdinalMappings
	logger   *slog.Logger
}

// NewEncoder creates an encoder with the given ordinal mapping tables.
func NewEncoder(mappings config.OrdinalMappings, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Encoder{mappings: mappings, logger: logger}
}

// Encoding is the encoder's output: the numeric frame plus the code tables
// needed to trace an encoded value back to its original label.
type Encoding struct {
	Frame *dataset.Frame

	// Binary lists the columns recoded from the selected/not-selected
	// sentinels to 1/0.
	Binary []string

	// Ordered maps each ordinal column to the level list that produced its
	// ranks (1-based position in the list).
	Ordered map[string][]string

	// Levels maps each unordered category column to its levels in code
	// order; code i+1 encodes Levels[name][i]. The encoding is lossy, these
	// tables are what makes it reversible.
	Levels map[string][]string
}

// Encode applies the four encoder passes in order: binary recode, category
// typing, ordinal assignment, then standardization followed by median
// imputation. Detection runs over the whole table before any recoding so a
// mutated column can never influence the classification of a later one.
func (e *Encoder) Encode(ctx context.Context, t *dataset.Table, columns []string) (*Encoding, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no demographic columns to encode")
	}

	// Pass 1: classify every column up front.
	kinds := make(map[string]columnKind, len(columns))
	for _, name := range columns {
		raw, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		kinds[name] = e.classify(name, raw)
	}

	enc := &Encoding{
		Ordered: make(map[string][]string),
		Levels:  make(map[string][]string),
	}
	frame, err := dataset.NewFrame(columns, t.NumRows())
	if err != nil {
		return nil, err
	}

	// Pass 2: recode each column by its detected kind.
	for _, name := range columns {
		raw, err := t.Column(name)
		if err != nil {
			return nil, err
		}

		var values []float64
		switch kinds[name] {
		case kindBinary:
			values = encodeBinary(raw)
			enc.Binary = append(enc.Binary, name)
		case kindNumeric:
			values = encodeNumeric(raw)
		case kindOrdered:
			levels, _ := e.mappings.Lookup(name)
			var unmatched int
			values, unmatched = encodeOrdinal(raw, levels)
			enc.Ordered[name] = levels
			// Frequency scales bottom out at the never sentinel: a skipped
			// question is a "never", not an unknown.
			if levels[0] == config.NeverSentinel {
				for i, cell := range raw {
					if cell == "" {
						values[i] = 1
					}
				}
			}
			if unmatched > 0 {
				e.logger.WarnContext(ctx, "ordinal column has labels outside its mapping",
					"column", name,
					"unmatched", unmatched,
				)
			}
		default:
			var levels []string
			values, levels = encodeCategorical(raw)
			enc.Levels[name] = levels
		}

		if err := frame.SetColumn(name, values); err != nil {
			return nil, err
		}
	}

	// Pass 3: standardize, then impute with the median of the standardized
	// values. The order matters and is kept as-is; imputing first would
	// shift every downstream number.
	for _, name := range columns {
		col, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		standardizeColumn(col)
		imputeMedian(col)
		if err := frame.SetColumn(name, col); err != nil {
			return nil, err
		}
	}

	enc.Frame = frame
	e.logger.InfoContext(ctx, "demographics encoded",
		"columns", len(columns),
		"binary", len(enc.Binary),
		"ordered", len(enc.Ordered),
		"categorical", len(enc.Levels),
	)
	return enc, nil
}

// classify determines a column's kind from its raw cells. Binary detection
// looks only at the first non-missing cell, matching the fixed sentinels
// exactly. A column whose non-missing cells all parse as numbers is free
// numeric; anything else is categorical, ordered when a mapping exists.
func (e *Encoder) classify(name string, raw []string) columnKind {
	for _, cell := range raw {
		if cell == "" {
			continue
		}
		if cell == config.BinarySelected || cell == config.BinaryNotSelected {
			return kindBinary
		}
		break
	}

	numeric := false
	for _, cell := range raw {
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
			break
		}
		numeric = true
	}
	if numeric {
		return kindNumeric
	}

	if _, ok := e.mappings.Lookup(name); ok {
		return kindOrdered
	}
	return kindCategory
}

// encodeBinary maps the selected sentinel to 1, not-selected to 0, anything
// else (including missing) to NaN.
func encodeBinary(raw []string) []float64 {
	out := make([]float64, len(raw))
	for i, cell := range raw {
		switch cell {
		case config.BinarySelected:
			out[i] = 1
		case config.BinaryNotSelected:
			out[i] = 0
		default:
			out[i] = math.NaN()
		}
	}
	return out
}

// encodeNumeric parses free numeric cells, missing or malformed to NaN.
func encodeNumeric(raw []string) []float64 {
	out := make([]float64, len(raw))
	for i, cell := range raw {
		v, err := strconv.ParseFloat(cell, 64)
		if cell == "" || err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

// encodeOrdinal assigns each cell its 1-based rank in the level list.
// Labels outside the list become NaN; the count of such cells is returned.
func encodeOrdinal(raw []string, levels []string) ([]float64, int) {
	rank := make(map[string]int, len(levels))
	for i, level := range levels {
		rank[level] = i + 1
	}
	out := make([]float64, len(raw))
	unmatched := 0
	for i, cell := range raw {
		if cell == "" {
			out[i] = math.NaN()
			continue
		}
		r, ok := rank[cell]
		if !ok {
			out[i] = math.NaN()
			unmatched++
			continue
		}
		out[i] = float64(r)
	}
	return out, unmatched
}

// encodeCategorical assigns arbitrary-but-consistent codes to an unordered
// category column: 1-based, in first-seen order. The observed levels are
// returned in code order.
func encodeCategorical(raw []string) ([]float64, []string) {
	codes := make(map[string]int)
	var levels []string
	out := make([]float64, len(raw))
	for i, cell := range raw {
		if cell == "" {
			out[i] = math.NaN()
			continue
		}
		code, ok := codes[cell]
		if !ok {
			levels = append(levels, cell)
			code = len(levels)
			codes[cell] = code
		}
		out[i] = float64(code)
	}
	return out, levels
}

// standardizeColumn subtracts the mean and divides by the standard deviation
// of the non-missing cells, in place. A constant column becomes zero
// deviations rather than NaN.
func standardizeColumn(col []float64) {
	present := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return
	}

	mean, std := stat.MeanStdDev(present, nil)
	for i, v := range col {
		if math.IsNaN(v) {
			continue
		}
		if std == 0 || math.IsNaN(std) {
			col[i] = 0
			continue
		}
		col[i] = (v - mean) / std
	}
}

// imputeMedian replaces NaN cells with the median of the non-missing cells,
// in place.
func imputeMedian(col []float64) {
	present := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return
	}

	sort.Float64s(present)
	var median float64
	mid := len(present) / 2
	if len(present)%2 == 0 {
		median = (present[mid-1] + present[mid]) / 2
	} else {
		median = present[mid]
	}

	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = median
		}
	}
}
