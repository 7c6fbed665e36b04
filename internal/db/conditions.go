package db

import "sort"

// Record maps column names to scalar values.
type Record map[string]any

// Field is one column = value pair of a structured condition.
type Field struct {
	Column string
	Value  any
}

// F is shorthand for Field{Column: column, Value: value}.
func F(column string, value any) Field {
	return Field{Column: column, Value: value}
}

// Conditions is the WHERE part of a statement. It is either a raw SQL
// fragment, which is copied into the statement without parameter binding, or
// a list of fields joined with AND and bound as named parameters. The zero
// value matches every row.
type Conditions struct {
	fragment string
	fields   []Field
	raw      bool
}

// Fragment returns conditions made of a literal SQL fragment, copied into the
// statement as written. It is not parameter bound, so whoever supplies it
// can run any SQL the connection allows; only accept it from trusted
// operators.
func Fragment(sql string) Conditions {
	return Conditions{fragment: sql, raw: true}
}

// Fields returns conditions matching every field, in the given order.
func Fields(fields ...Field) Conditions {
	return Conditions{fields: fields}
}

// Match returns conditions matching every key of m. Columns are sorted so
// that the generated SQL is stable.
func Match(m map[string]any) Conditions {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	fields := make([]Field, 0, len(cols))
	for _, col := range cols {
		fields = append(fields, F(col, m[col]))
	}
	return Conditions{fields: fields}
}

// IsRaw reports whether c is a literal fragment.
func (c Conditions) IsRaw() bool {
	return c.raw
}

// IsEmpty reports whether c matches every row.
func (c Conditions) IsEmpty() bool {
	if c.raw {
		return c.fragment == ""
	}
	return len(c.fields) == 0
}
