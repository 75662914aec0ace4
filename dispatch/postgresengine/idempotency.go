package postgresengine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/postgresengine/internal/adapters"
)

// ErrBuildingProcessedQueryFailed indicates that an idempotency-store
// statement could not be built.
var ErrBuildingProcessedQueryFailed = errors.New("building processed-events query failed")

const defaultProcessedTableName = "dispatch_processed_events"

// Processed-events column names.
const (
	colHandlerIdentity = "handler_identity"
)

const (
	logMsgProcessedCheckFailed = "checking processed-events record failed"
	logMsgProcessedMarkFailed  = "inserting processed-events record failed"
)

// IdempotencyStore is a PostgreSQL-backed implementation of
// dispatch.IdempotencyStore. Records survive process restarts, giving event
// handlers wrapped in the idempotency guard exactly-once effects across
// redeliveries.
type IdempotencyStore struct {
	adapter   adapters.DBAdapter
	tableName string
	logger    Logger
}

// NewIdempotencyStoreFromPGXPool creates a store backed by a pgxpool.Pool
// with optional configuration. This is the recommended constructor.
func NewIdempotencyStoreFromPGXPool(pool *pgxpool.Pool, options ...StoreOption) (*IdempotencyStore, error) {
	return newIdempotencyStore(adapters.NewPGXAdapter(pool), options...)
}

// NewIdempotencyStoreFromSQLX creates a store backed by an sqlx.DB with
// optional configuration.
func NewIdempotencyStoreFromSQLX(db *sqlx.DB, options ...StoreOption) (*IdempotencyStore, error) {
	return newIdempotencyStore(adapters.NewSQLXAdapter(db), options...)
}

// NewIdempotencyStoreFromSQLDB creates a store backed by a database/sql DB
// with optional configuration.
func NewIdempotencyStoreFromSQLDB(db *sql.DB, options ...StoreOption) (*IdempotencyStore, error) {
	return newIdempotencyStore(adapters.NewSQLAdapter(db), options...)
}

func newIdempotencyStore(adapter adapters.DBAdapter, options ...StoreOption) (*IdempotencyStore, error) {
	store := &IdempotencyStore{
		adapter:   adapter,
		tableName: defaultProcessedTableName,
	}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// HasBeenProcessed implements dispatch.IdempotencyStore.
func (s *IdempotencyStore) HasBeenProcessed(ctx context.Context, eventID uuid.UUID, handlerIdentity string) (bool, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.L("1")).
		Where(
			goqu.C(colEventID).Eq(eventID.String()),
			goqu.C(colHandlerIdentity).Eq(handlerIdentity),
		).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return false, errors.Join(ErrBuildingProcessedQueryFailed, toSQLErr)
	}

	rows, err := s.adapter.Query(ctx, sqlQuery)
	if err != nil {
		s.logError(logMsgProcessedCheckFailed, err, logAttrEventType, eventID.String())
		return false, err
	}

	defer func() { _ = rows.Close() }()

	return rows.Next(), nil
}

// MarkProcessed implements dispatch.IdempotencyStore. A concurrent redelivery
// that already recorded the pair is tolerated via ON CONFLICT DO NOTHING.
func (s *IdempotencyStore) MarkProcessed(ctx context.Context, eventID uuid.UUID, eventType string, handlerIdentity string) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Cols(colEventID, colEventType, colHandlerIdentity).
		Vals(goqu.Vals{eventID.String(), eventType, handlerIdentity}).
		OnConflict(goqu.DoNothing())

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingProcessedQueryFailed, toSQLErr)
	}

	if _, err := s.adapter.Exec(ctx, sqlQuery); err != nil {
		s.logError(logMsgProcessedMarkFailed, err, logAttrEventType, eventType)
		return err
	}

	return nil
}

// logError logs error information if the logger is configured.
func (s *IdempotencyStore) logError(message string, err error, args ...any) {
	if s.logger != nil {
		allArgs := append([]any{logAttrError, err.Error()}, args...)
		s.logger.Error(message, allArgs...)
	}
}

var _ dispatch.IdempotencyStore = (*IdempotencyStore)(nil)
