package adapters

import (
	"context"
	"database/sql"
)

// stdRows wraps sql.Rows to implement the DBRows interface. Shared by the
// sqlx and database/sql adapters.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps sql.Result to implement the DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

// stdTransaction wraps sql.Tx to implement the DBTransaction interface.
// Shared by the sqlx and database/sql adapters, both of which expose a
// *sql.Tx underneath.
type stdTransaction struct {
	tx *sql.Tx
}

func (t *stdTransaction) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func (t *stdTransaction) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := t.tx.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

func (t *stdTransaction) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *stdTransaction) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}
