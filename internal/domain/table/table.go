// Package table holds the generic tabular result produced by the data source.
//
// A Table is an ordered sequence of uniformly shaped rows with named, typed
// columns. Cell values are normalised to int64, float64, string, time.Time,
// bool or nil (SQL NULL) so downstream decoders never see driver types.
package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the semantic type of a column.
type Kind string

// Column kinds.
const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindTime   Kind = "time"
	KindBool   Kind = "bool"
)

// Column describes one column of a Table.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Table is a materialized result set. Treat it as read-only once built.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Empty returns a table with no columns and no rows.
func Empty() Table {
	return Table{Columns: []Column{}, Rows: [][]any{}}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool { return len(t.Rows) == 0 }

// Index returns the position of the named column or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row/column name; ok is false when the column is unknown.
func (t Table) Value(row int, name string) (any, bool) {
	i := t.Index(name)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return nil, false
	}
	return t.Rows[row][i], true
}

// UnmarshalJSON restores cell values to the Go types of their column kinds,
// so a table survives a round trip through an external cache.
func (t *Table) UnmarshalJSON(data []byte) error {
	var wire struct {
		Columns []Column `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return err
	}

	rows := make([][]any, len(wire.Rows))
	for r, raw := range wire.Rows {
		if len(raw) != len(wire.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, r, len(raw), len(wire.Columns))
		}
		row := make([]any, len(raw))
		for c, v := range raw {
			cv, err := Convert(wire.Columns[c].Kind, v)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", r, wire.Columns[c].Name, err)
			}
			row[c] = cv
		}
		rows[r] = row
	}

	t.Columns = wire.Columns
	if t.Columns == nil {
		t.Columns = []Column{}
	}
	t.Rows = rows
	return nil
}
