package db

import "context"

// Store defines the data-access operations commands rely on.
// *Helper implements it; tests may substitute their own.
type Store interface {
	// Queries
	Select(ctx context.Context, table string, where Conditions, columns []string, orderBy string, limit int) ([]Record, error)
	Find(ctx context.Context, table string, where Conditions, columns []string, orderBy string) (Record, error)

	// Writes
	Insert(ctx context.Context, table string, record Record) (int64, error)
	BatchInsert(ctx context.Context, table string, records []Record, batchSize int) (int64, error)
	Update(ctx context.Context, table string, where Conditions, record Record) (int64, error)
	Delete(ctx context.Context, table string, where Conditions) (int64, error)

	// Transactions (depth counted)
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
}

var _ Store = (*Helper)(nil)
