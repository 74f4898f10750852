package cleaning

import (
	"math"
	"unicode"

	"surveycli/internal/dataset"
)

// NormalizeRating extracts the leading numeric code from a rating cell
// formatted as "<digit> = <free text>". A cell whose first character is not
// a digit, or an empty cell, yields NaN. Only the first character is read;
// the scale is single-digit by design.
func NormalizeRating(raw string) float64 {
	for _, r := range raw {
		if unicode.IsDigit(r) {
			return float64(r - '0')
		}
		return math.NaN()
	}
	return math.NaN()
}

// NormalizeRatingColumns converts the named rating columns of a table into a
// numeric frame, applying NormalizeRating cell-wise. Columns keep their
// original names; no other columns appear in the result.
func NormalizeRatingColumns(t *dataset.Table, columns []string) (*dataset.Frame, error) {
	frame, err := dataset.NewFrame(columns, t.NumRows())
	if err != nil {
		return nil, err
	}
	for _, name := range columns {
		raw, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(raw))
		for i, cell := range raw {
			values[i] = NormalizeRating(cell)
		}
		if err := frame.SetColumn(name, values); err != nil {
			return nil, err
		}
	}
	return frame, nil
}
