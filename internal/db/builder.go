package db

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// statement is a query with :name placeholders and the values bound to them.
type statement struct {
	query  string
	params map[string]any
}

type binder struct {
	params map[string]any
}

func newBinder() *binder {
	return &binder{params: map[string]any{}}
}

// bind registers value under a placeholder derived from name and returns the
// placeholder. Repeated names get a numeric suffix.
func (b *binder) bind(name string, value any) string {
	base := paramName(name)
	candidate := base
	for i := 2; ; i++ {
		if _, taken := b.params[candidate]; !taken {
			break
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
	b.params[candidate] = value
	return ":" + candidate
}

// paramName maps a column name onto the characters allowed in a placeholder.
func paramName(column string) string {
	var sb strings.Builder
	for _, r := range column {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "p"
	}
	return sb.String()
}

// literal escapes colons so sqlx copies s into the statement verbatim
// instead of reading ":word" as a placeholder.
func literal(s string) string {
	return strings.ReplaceAll(s, ":", "::")
}

func (b *binder) where(c Conditions) string {
	if c.IsEmpty() {
		return ""
	}
	if c.raw {
		return " WHERE " + literal(c.fragment)
	}

	parts := make([]string, 0, len(c.fields))
	for _, f := range c.fields {
		if f.Value == nil {
			parts = append(parts, f.Column+" IS NULL")
			continue
		}
		parts = append(parts, f.Column+"="+b.bind(f.Column, f.Value))
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

func sortedColumns(r Record) []string {
	cols := make([]string, 0, len(r))
	for col := range r {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func buildSelect(table string, where Conditions, columns []string, orderBy string, limit int) statement {
	b := newBinder()

	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, table)
	sb.WriteString(b.where(where))
	if orderBy != "" {
		sb.WriteString(" ORDER BY " + literal(orderBy))
	}
	if limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(limit))
	}

	return statement{query: sb.String(), params: b.params}
}

func buildInsert(table string, record Record) (statement, error) {
	if len(record) == 0 {
		return statement{}, ErrEmptyRecord
	}

	b := newBinder()
	cols := sortedColumns(record)
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = b.bind(col, record[col])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return statement{query: query, params: b.params}, nil
}

// buildBatchInsert renders one multi-row INSERT. Every record must carry
// exactly the columns in cols.
func buildBatchInsert(table string, cols []string, records []Record) (statement, error) {
	if len(records) == 0 || len(cols) == 0 {
		return statement{}, ErrEmptyRecord
	}

	b := newBinder()
	rows := make([]string, len(records))
	for i, rec := range records {
		if err := sameColumns(cols, rec); err != nil {
			return statement{}, fmt.Errorf("record %d: %w", i, err)
		}
		placeholders := make([]string, len(cols))
		for j, col := range cols {
			placeholders[j] = b.bind(col+"_"+strconv.Itoa(i), rec[col])
		}
		rows[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(cols, ", "), strings.Join(rows, ", "))
	return statement{query: query, params: b.params}, nil
}

func sameColumns(cols []string, rec Record) error {
	if len(rec) != len(cols) {
		return ErrColumnMismatch
	}
	for _, col := range cols {
		if _, ok := rec[col]; !ok {
			return ErrColumnMismatch
		}
	}
	return nil
}

func buildUpdate(table string, where Conditions, record Record) (statement, error) {
	if len(record) == 0 {
		return statement{}, ErrEmptyRecord
	}

	b := newBinder()
	cols := sortedColumns(record)
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = col + "=" + b.bind(col, record[col])
	}

	query := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", ")) + b.where(where)
	return statement{query: query, params: b.params}, nil
}

func buildDelete(table string, where Conditions) statement {
	b := newBinder()
	query := "DELETE FROM " + table + b.where(where)
	return statement{query: query, params: b.params}
}
