package db

import "database/sql"

// ResultSet is the shaped outcome of one query execution. Rows preserve
// column order through Columns. Truncated means the row count reached the
// cap; it is an upper-bound heuristic, not proof that more rows exist
// server-side.
type ResultSet struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	RowLimit  int              `json:"row_limit"`
	Truncated bool             `json:"truncated"`
}

// shapeRows materializes every row the driver returns, zipping positional
// values with column names. limit <= 0 means uncapped (catalog queries);
// the truncation flag then never fires.
func shapeRows(rows *sql.Rows, limit int) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]any{}
	scan := make([]any, len(cols))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			m[c] = *(scan[i].(*any))
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ResultSet{
		Columns:   cols,
		Rows:      out,
		RowCount:  len(out),
		RowLimit:  limit,
		Truncated: limit > 0 && len(out) >= limit,
	}, nil
}
