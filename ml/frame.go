package ml

import "fmt"

// Frame is a small column-named table handed to a model. Values are strings
// for categorical columns and numbers for numeric ones.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// NewFrame builds a frame from column names and rows.
func NewFrame(columns []string, rows ...[]any) Frame {
	return Frame{Columns: columns, Rows: rows}
}

// Len returns the number of rows.
func (f Frame) Len() int {
	return len(f.Rows)
}

func (f Frame) columnIndex() (map[string]int, error) {
	index := make(map[string]int, len(f.Columns))
	for i, name := range f.Columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}
	return index, nil
}
