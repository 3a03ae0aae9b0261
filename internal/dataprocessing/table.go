package dataprocessing

// Schema is an ordered sequence of column names. After header synthesis
// every name is unique and non-empty.
type Schema []string

// Index returns the position of name in the schema, or -1.
func (s Schema) Index(name string) int {
	for i, col := range s {
		if col == name {
			return i
		}
	}
	return -1
}

// Contains reports whether name is one of the schema's columns.
func (s Schema) Contains(name string) bool {
	return s.Index(name) >= 0
}

// Clone returns an independent copy of the schema.
func (s Schema) Clone() Schema {
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// Table is a fully materialized worksheet: a schema plus data rows aligned
// to it by position. A cell is nil, a string, or a float64. Pipeline stages
// never mutate a Table; each stage returns a fresh one.
type Table struct {
	Columns Schema
	Rows    [][]any
}

// NewTable builds a Table from string rows, widening or truncating each row
// to the schema width. Blank cells become empty strings, not nil; null
// normalization is the coercion stage's job.
func NewTable(columns Schema, rows [][]string) Table {
	out := Table{Columns: columns, Rows: make([][]any, len(rows))}
	for i, row := range rows {
		cells := make([]any, len(columns))
		for j := range columns {
			if j < len(row) {
				cells[j] = row[j]
			} else {
				cells[j] = ""
			}
		}
		out.Rows[i] = cells
	}
	return out
}

// isNullCell reports whether a raw cell carries no value: nil or an empty
// string (a blank spreadsheet cell). Literal text such as "nan" is a value
// here; the coercion policies decide its fate later.
func isNullCell(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
