package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/AI2HU/dbconsole/internal/logger"
)

// DefaultBatchSize is used by BatchInsert when batchSize <= 0.
const DefaultBatchSize = 100

// Helper wraps a relational connection with parameterized CRUD and a
// depth-counted transaction. Nested Begin calls do not create savepoints:
// only the outermost Begin/Commit/Rollback reach the database, so a Rollback
// at depth > 1 merely decrements the counter.
//
// A Helper is not safe for concurrent use.
type Helper struct {
	db    *sqlx.DB
	tx    *sqlx.Tx
	depth int
}

// New creates a helper over conn.
func New(conn *sqlx.DB) *Helper {
	return &Helper{db: conn}
}

// Depth returns the current transaction depth.
func (h *Helper) Depth() int {
	return h.depth
}

// InTransaction reports whether a physical transaction is open.
func (h *Helper) InTransaction() bool {
	return h.tx != nil
}

// ext routes statements through the open transaction, if any.
func (h *Helper) ext() sqlx.ExtContext {
	if h.tx != nil {
		return h.tx
	}
	return h.db
}

// Select returns the rows of table matching where. Empty columns selects
// every column, an empty orderBy leaves the order unspecified and
// limit <= 0 returns all rows.
func (h *Helper) Select(ctx context.Context, table string, where Conditions, columns []string, orderBy string, limit int) ([]Record, error) {
	stmt := buildSelect(table, where, columns, orderBy, limit)
	records, err := h.query(ctx, stmt)
	if err != nil {
		return nil, wrap("select", table, stmt.query, err)
	}
	return records, nil
}

// Find returns the first matching row, or an error wrapping ErrNotFound.
func (h *Helper) Find(ctx context.Context, table string, where Conditions, columns []string, orderBy string) (Record, error) {
	stmt := buildSelect(table, where, columns, orderBy, 1)
	records, err := h.query(ctx, stmt)
	if err != nil {
		return nil, wrap("find", table, stmt.query, err)
	}
	if len(records) == 0 {
		return nil, wrap("find", table, stmt.query, ErrNotFound)
	}
	return records[0], nil
}

// Insert adds one row and returns its generated identifier.
func (h *Helper) Insert(ctx context.Context, table string, record Record) (int64, error) {
	stmt, err := buildInsert(table, record)
	if err != nil {
		return 0, wrap("insert", table, "", err)
	}

	res, err := h.exec(ctx, stmt)
	if err != nil {
		return 0, wrap("insert", table, stmt.query, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("insert", table, stmt.query, err)
	}
	return id, nil
}

// BatchInsert inserts records in chunks of batchSize rows, all inside one
// transaction, and returns the number of affected rows. On failure the
// transaction is rolled back and the error returned.
func (h *Helper) BatchInsert(ctx context.Context, table string, records []Record, batchSize int) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cols := sortedColumns(records[0])
	if len(cols) == 0 {
		return 0, wrap("batch insert", table, "", ErrEmptyRecord)
	}
	for i, rec := range records {
		if err := sameColumns(cols, rec); err != nil {
			return 0, wrap("batch insert", table, "", fmt.Errorf("record %d: %w", i, err))
		}
	}

	if err := h.Begin(ctx); err != nil {
		return 0, err
	}

	var total int64
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		n, err := h.insertChunk(ctx, table, cols, records[start:end])
		if err != nil {
			if rbErr := h.Rollback(); rbErr != nil {
				logger.Error("Failed to rollback batch insert into %s: %v", table, rbErr)
			}
			return 0, err
		}
		total += n
	}

	if err := h.Commit(); err != nil {
		return 0, err
	}

	logger.Debug("Batch inserted %d rows into %s", total, table)
	return total, nil
}

func (h *Helper) insertChunk(ctx context.Context, table string, cols []string, chunk []Record) (int64, error) {
	stmt, err := buildBatchInsert(table, cols, chunk)
	if err != nil {
		return 0, wrap("batch insert", table, "", err)
	}

	res, err := h.exec(ctx, stmt)
	if err != nil {
		return 0, wrap("batch insert", table, stmt.query, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("batch insert", table, stmt.query, err)
	}
	return n, nil
}

// Update sets record on the rows matching where and returns the number of
// affected rows.
func (h *Helper) Update(ctx context.Context, table string, where Conditions, record Record) (int64, error) {
	stmt, err := buildUpdate(table, where, record)
	if err != nil {
		return 0, wrap("update", table, "", err)
	}
	return h.affected(ctx, "update", table, stmt)
}

// Delete removes the rows matching where and returns how many went away.
func (h *Helper) Delete(ctx context.Context, table string, where Conditions) (int64, error) {
	return h.affected(ctx, "delete", table, buildDelete(table, where))
}

func (h *Helper) affected(ctx context.Context, op, table string, stmt statement) (int64, error) {
	res, err := h.exec(ctx, stmt)
	if err != nil {
		return 0, wrap(op, table, stmt.query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap(op, table, stmt.query, err)
	}
	return n, nil
}

// Exec runs a statement with :name placeholders bound from params.
func (h *Helper) Exec(ctx context.Context, query string, params map[string]any) (sql.Result, error) {
	res, err := h.exec(ctx, statement{query: query, params: params})
	if err != nil {
		return nil, wrap("exec", "", query, err)
	}
	return res, nil
}

// Query runs a query with :name placeholders bound from params.
func (h *Helper) Query(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	records, err := h.query(ctx, statement{query: query, params: params})
	if err != nil {
		return nil, wrap("query", "", query, err)
	}
	return records, nil
}

func (h *Helper) exec(ctx context.Context, stmt statement) (sql.Result, error) {
	logger.Debug("exec: %s", stmt.query)
	return sqlx.NamedExecContext(ctx, h.ext(), stmt.query, nonNil(stmt.params))
}

func (h *Helper) query(ctx context.Context, stmt statement) ([]Record, error) {
	logger.Debug("query: %s", stmt.query)

	rows, err := sqlx.NamedQueryContext(ctx, h.ext(), stmt.query, nonNil(stmt.params))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		records = append(records, normalize(row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nonNil(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	return params
}

// normalize turns driver byte slices into strings.
func normalize(row map[string]any) Record {
	rec := make(Record, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec[k] = v
	}
	return rec
}

// Begin opens a transaction, or joins the open one at a deeper level.
func (h *Helper) Begin(ctx context.Context) error {
	if h.depth == 0 {
		tx, err := h.db.BeginTxx(ctx, nil)
		if err != nil {
			return wrap("begin", "", "", err)
		}
		h.tx = tx
	}
	h.depth++
	return nil
}

// Commit leaves one transaction level. The physical commit happens when the
// outermost level is left.
func (h *Helper) Commit() error {
	if h.depth == 0 {
		return wrap("commit", "", "", ErrNoTransaction)
	}
	h.depth--
	if h.depth > 0 {
		return nil
	}

	tx := h.tx
	h.tx = nil
	if err := tx.Commit(); err != nil {
		return wrap("commit", "", "", err)
	}
	return nil
}

// Rollback leaves one transaction level. The physical rollback happens only
// when the outermost level is left.
func (h *Helper) Rollback() error {
	if h.depth == 0 {
		return wrap("rollback", "", "", ErrNoTransaction)
	}
	h.depth--
	if h.depth > 0 {
		return nil
	}

	tx := h.tx
	h.tx = nil
	if err := tx.Rollback(); err != nil {
		return wrap("rollback", "", "", err)
	}
	return nil
}

// Transaction runs fn between Begin and Commit, rolling back when fn
// returns an error or panics.
func (h *Helper) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := h.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = h.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := h.Rollback(); rbErr != nil {
			logger.Error("Failed to rollback transaction: %v", rbErr)
		}
		return err
	}

	return h.Commit()
}
