package postgresengine

import (
	"errors"
)

var (
	// ErrEmptyOutboxTableName is returned when WithOutboxTableName is given an
	// empty string.
	ErrEmptyOutboxTableName = errors.New("empty outbox table name supplied")

	// ErrEmptyProcessedTableName is returned when WithProcessedTableName is
	// given an empty string.
	ErrEmptyProcessedTableName = errors.New("empty processed-events table name supplied")
)

// Logger interface for SQL statement logging and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option defines a functional option for configuring a UnitOfWorkFactory.
type Option func(*UnitOfWorkFactory) error

// WithOutboxTableName sets the table the engine writes pending domain events
// to on SaveChanges.
func WithOutboxTableName(tableName string) Option {
	return func(f *UnitOfWorkFactory) error {
		if tableName == "" {
			return ErrEmptyOutboxTableName
		}

		f.outboxTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the factory and every unit of work it
// creates.
//
// Debug level: generated SQL with execution timing (development use)
// Error level: failures while building or executing statements.
func WithLogger(logger Logger) Option {
	return func(f *UnitOfWorkFactory) error {
		f.logger = logger
		return nil
	}
}

// StoreOption defines a functional option for configuring an IdempotencyStore.
type StoreOption func(*IdempotencyStore) error

// WithProcessedTableName sets the table the idempotency store keeps its
// processing records in.
func WithProcessedTableName(tableName string) StoreOption {
	return func(s *IdempotencyStore) error {
		if tableName == "" {
			return ErrEmptyProcessedTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithStoreLogger sets the logger for the idempotency store.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *IdempotencyStore) error {
		s.logger = logger
		return nil
	}
}
