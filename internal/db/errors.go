package db

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Find when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrNoTransaction is returned by Commit and Rollback at depth 0.
	ErrNoTransaction = errors.New("no active transaction")
	// ErrEmptyRecord is returned when an insert or update carries no columns.
	ErrEmptyRecord = errors.New("record has no columns")
	// ErrColumnMismatch is returned when batch records differ in their columns.
	ErrColumnMismatch = errors.New("record columns differ from the first record")
)

// Error describes a failed data-access operation.
type Error struct {
	Op    string
	Table string
	Query string
	Err   error
}

func (e *Error) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("db %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("db %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, table, query string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Table: table, Query: query, Err: err}
}
