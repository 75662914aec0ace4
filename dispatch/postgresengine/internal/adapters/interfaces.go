// Package adapters contains thin wrappers that give the postgres engine one
// database interface over pgxpool.Pool, sqlx.DB, and database/sql, including
// transaction control.
package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the
// postgres engine.
type DBAdapter interface {
	// Begin opens a database transaction.
	Begin(ctx context.Context) (DBTransaction, error)

	// Query runs a query outside any transaction.
	Query(ctx context.Context, query string) (DBRows, error)

	// Exec runs a statement outside any transaction.
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBTransaction defines the operations available inside an open transaction.
type DBTransaction interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
