package table

import (
	"database/sql"
	"fmt"
)

// Rows is the subset of *sql.Rows needed to materialize a Table.
type Rows interface {
	ColumnTypes() ([]*sql.ColumnType, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// FromRows drains rows into a Table, inferring each column's kind from its
// database type. The caller closes rows.
func FromRows(rows Rows) (Table, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return Empty(), fmt.Errorf("column types: %w", err)
	}

	cols := make([]Column, len(types))
	for i, ct := range types {
		cols[i] = Column{Name: ct.Name(), Kind: KindOf(ct.DatabaseTypeName())}
	}

	out := Table{Columns: cols, Rows: [][]any{}}
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return Empty(), fmt.Errorf("scan row %d: %w", len(out.Rows), err)
		}
		row := make([]any, len(cols))
		for i, v := range raw {
			cv, err := Convert(cols[i].Kind, v)
			if err != nil {
				return Empty(), fmt.Errorf("row %d column %q: %w", len(out.Rows), cols[i].Name, err)
			}
			row[i] = cv
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Empty(), fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
