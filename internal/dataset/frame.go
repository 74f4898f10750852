package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Frame is a numeric respondent-by-column matrix with named columns. NaN is
// the missing value. Row order is the respondent order of the run and is
// identical across every frame derived from the same table.
type Frame struct {
	columns []string
	index   map[string]int
	data    *mat.Dense
}

// NewFrame creates a frame with the given columns and row count, every cell
// initialized to NaN.
func NewFrame(columns []string, numRows int) (*Frame, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("frame needs at least one column")
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, exists := index[c]; exists {
			return nil, fmt.Errorf("duplicate frame column %q", c)
		}
		index[c] = i
	}

	backing := make([]float64, numRows*len(columns))
	for i := range backing {
		backing[i] = math.NaN()
	}
	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Frame{
		columns: cols,
		index:   index,
		data:    mat.NewDense(numRows, len(columns), backing),
	}, nil
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	r, _ := f.data.Dims()
	return r
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Set writes a value into (row, column name).
func (f *Frame) Set(row int, name string, v float64) error {
	col, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown frame column %q", name)
	}
	f.data.Set(row, col, v)
	return nil
}

// At returns the value at (row, column name).
func (f *Frame) At(row int, name string) (float64, error) {
	col, ok := f.index[name]
	if !ok {
		return 0, fmt.Errorf("unknown frame column %q", name)
	}
	return f.data.At(row, col), nil
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown frame column %q", name)
	}
	out := make([]float64, f.NumRows())
	mat.Col(out, col, f.data)
	return out, nil
}

// SetColumn overwrites the named column with the given values.
func (f *Frame) SetColumn(name string, values []float64) error {
	col, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown frame column %q", name)
	}
	if len(values) != f.NumRows() {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), f.NumRows())
	}
	for i, v := range values {
		f.data.Set(i, col, v)
	}
	return nil
}

// Matrix returns the underlying dense matrix. Callers must treat it as
// read-only.
func (f *Frame) Matrix() *mat.Dense { return f.data }

// Select returns a new frame holding copies of the named columns, in order.
func (f *Frame) Select(names []string) (*Frame, error) {
	out, err := NewFrame(names, f.NumRows())
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if err := out.SetColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CountMissing returns the number of NaN cells in the frame.
func (f *Frame) CountMissing() int {
	rows, cols := f.data.Dims()
	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(f.data.At(i, j)) {
				count++
			}
		}
	}
	return count
}
