package dataset

import (
	"fmt"
	"strings"
)

// Table is an immutable-by-convention table of raw string cells with named
// columns, as read from the survey sheet. An empty (or whitespace-only) cell
// is a missing value.
type Table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a table from a header row and data rows. Short rows are
// padded with empty cells so every row has one cell per header; rows longer
// than the header are an error.
func NewTable(headers []string, rows [][]string) (*Table, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("table needs at least one column")
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("column %d has an empty header", i)
		}
		if _, exists := index[h]; exists {
			return nil, fmt.Errorf("duplicate column header %q", h)
		}
		headers[i] = h
		index[h] = i
	}

	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > len(headers) {
			return nil, fmt.Errorf("row %d has %d cells for %d columns", i, len(row), len(headers))
		}
		p := make([]string, len(headers))
		copy(p, row)
		padded[i] = p
	}

	return &Table{headers: headers, index: index, rows: padded}, nil
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.headers))
	copy(out, t.headers)
	return out
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.headers) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the trimmed cell at (row, column name). Missing cells come
// back as the empty string.
func (t *Table) Cell(row int, name string) (string, error) {
	col, ok := t.index[name]
	if !ok {
		return "", fmt.Errorf("unknown column %q", name)
	}
	if row < 0 || row >= len(t.rows) {
		return "", fmt.Errorf("row %d out of range [0,%d)", row, len(t.rows))
	}
	return strings.TrimSpace(t.rows[row][col]), nil
}

// Column returns a copy of the named column, cells trimmed.
func (t *Table) Column(name string) ([]string, error) {
	col, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = strings.TrimSpace(row[col])
	}
	return out, nil
}

// IsMissing reports whether the cell at (row, name) is a missing value.
func (t *Table) IsMissing(row int, name string) (bool, error) {
	cell, err := t.Cell(row, name)
	if err != nil {
		return false, err
	}
	return cell == "", nil
}
