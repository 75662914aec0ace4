package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/postgresengine/internal/adapters"
)

var (
	// ErrTransactionNotStarted indicates an operation that requires an open
	// transaction while none has been begun.
	ErrTransactionNotStarted = errors.New("transaction has not been started")

	// ErrTransactionAlreadyStarted indicates a second BeginTransaction call on
	// the same unit of work.
	ErrTransactionAlreadyStarted = errors.New("transaction has already been started")

	// ErrTransactionFinished indicates an operation on a unit of work whose
	// transaction was already committed or rolled back.
	ErrTransactionFinished = errors.New("transaction has already finished")

	// ErrBuildingOutboxQueryFailed indicates that the outbox insert statement
	// could not be built.
	ErrBuildingOutboxQueryFailed = errors.New("building outbox insert query failed")

	// ErrMarshalingEventFailed indicates that a domain event payload could not
	// be marshaled for the outbox.
	ErrMarshalingEventFailed = errors.New("marshaling domain event payload failed")

	// ErrNoUnitOfWorkInContext indicates that a handler asked for the postgres
	// unit of work outside a transactional dispatch scope.
	ErrNoUnitOfWorkInContext = errors.New("no postgres unit of work in context")
)

const defaultOutboxTableName = "dispatch_outbox"

const dialectPostgres = "postgres"

// Outbox column names.
const (
	colEventID    = "event_id"
	colEventType  = "event_type"
	colPayload    = "payload"
	colOccurredAt = "occurred_at"
)

// Log messages and attribute keys.
const (
	logMsgSQLExecuted         = "sql executed: "
	logMsgBuildOutboxFailed   = "building outbox insert query failed"
	logMsgOutboxInsertFailed  = "inserting pending events into outbox failed"
	logMsgMarshalEventFailed  = "marshaling domain event payload failed"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrDurationMS         = "duration_ms"
	logAttrEventCount         = "event_count"
	logAttrEventType          = "event_type"
	actionOutboxInsert        = "outbox insert"
)

// UnitOfWorkFactory creates one PostgreSQL-backed unit of work per dispatch
// scope. It implements dispatch.UnitOfWorkFactory.
type UnitOfWorkFactory struct {
	adapter         adapters.DBAdapter
	outboxTableName string
	logger          Logger
}

// NewUnitOfWorkFactoryFromPGXPool creates a factory backed by a pgxpool.Pool
// with optional configuration. This is the recommended constructor.
func NewUnitOfWorkFactoryFromPGXPool(pool *pgxpool.Pool, options ...Option) (*UnitOfWorkFactory, error) {
	return newUnitOfWorkFactory(adapters.NewPGXAdapter(pool), options...)
}

// NewUnitOfWorkFactoryFromSQLX creates a factory backed by an sqlx.DB with
// optional configuration.
func NewUnitOfWorkFactoryFromSQLX(db *sqlx.DB, options ...Option) (*UnitOfWorkFactory, error) {
	return newUnitOfWorkFactory(adapters.NewSQLXAdapter(db), options...)
}

// NewUnitOfWorkFactoryFromSQLDB creates a factory backed by a database/sql DB
// with optional configuration.
func NewUnitOfWorkFactoryFromSQLDB(db *sql.DB, options ...Option) (*UnitOfWorkFactory, error) {
	return newUnitOfWorkFactory(adapters.NewSQLAdapter(db), options...)
}

func newUnitOfWorkFactory(adapter adapters.DBAdapter, options ...Option) (*UnitOfWorkFactory, error) {
	factory := &UnitOfWorkFactory{
		adapter:         adapter,
		outboxTableName: defaultOutboxTableName,
	}

	for _, option := range options {
		if err := option(factory); err != nil {
			return nil, err
		}
	}

	return factory, nil
}

// NewUnitOfWork implements dispatch.UnitOfWorkFactory.
func (f *UnitOfWorkFactory) NewUnitOfWork(_ context.Context) (dispatch.UnitOfWork, error) {
	return &UnitOfWork{
		adapter:         f.adapter,
		outboxTableName: f.outboxTableName,
		logger:          f.logger,
	}, nil
}

// txState models the transaction lifecycle of one unit of work.
type txState int

const (
	stateNotStarted txState = iota
	stateInTransaction
	stateCommitted
	stateRolledBack
)

// UnitOfWork owns one database transaction and the pending-event queue of one
// dispatch scope. Handlers obtain it from the dispatch context to run their
// statements inside the transaction and to record domain events.
type UnitOfWork struct {
	adapter         adapters.DBAdapter
	outboxTableName string
	logger          Logger

	mu      sync.Mutex
	state   txState
	tx      adapters.DBTransaction
	pending dispatch.DomainEvents
}

// BeginTransaction opens the database transaction for this scope.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch u.state {
	case stateInTransaction:
		return ErrTransactionAlreadyStarted
	case stateCommitted, stateRolledBack:
		return ErrTransactionFinished
	case stateNotStarted:
	}

	tx, err := u.adapter.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.state = stateInTransaction

	return nil
}

// SaveChanges writes the pending domain events into the outbox table inside
// the open transaction. Handler statements have already run against the
// transaction, so after SaveChanges a commit makes state change and outbox
// entries durable atomically.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.requireInTransaction(); err != nil {
		return err
	}

	if len(u.pending) == 0 {
		return nil
	}

	sqlQuery, err := u.buildOutboxInsertQuery(u.pending)
	if err != nil {
		return err
	}

	start := time.Now()
	_, execErr := u.tx.Exec(ctx, sqlQuery)
	duration := time.Since(start)

	if execErr != nil {
		u.logError(logMsgOutboxInsertFailed, execErr, logAttrEventCount, len(u.pending))
		return execErr
	}

	u.logQueryWithDuration(sqlQuery, actionOutboxInsert, duration)

	return nil
}

// CommitTransaction commits the open transaction.
func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.requireInTransaction(); err != nil {
		return err
	}

	if err := u.tx.Commit(ctx); err != nil {
		return err
	}

	u.state = stateCommitted
	u.tx = nil

	return nil
}

// RollbackTransaction rolls the open transaction back.
func (u *UnitOfWork) RollbackTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.requireInTransaction(); err != nil {
		return err
	}

	if err := u.tx.Rollback(ctx); err != nil {
		return err
	}

	u.state = stateRolledBack
	u.tx = nil

	return nil
}

// GetAndClearPendingEvents atomically snapshots and empties the pending-event
// queue.
func (u *UnitOfWork) GetAndClearPendingEvents() dispatch.DomainEvents {
	u.mu.Lock()
	defer u.mu.Unlock()

	drained := u.pending
	u.pending = nil

	return drained
}

// RecordEvent appends a domain event to the pending queue. Domain code calls
// this while the command's transaction is open.
func (u *UnitOfWork) RecordEvent(event dispatch.DomainEvent) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending = append(u.pending, event)
}

// Exec runs a statement inside the open transaction.
func (u *UnitOfWork) Exec(ctx context.Context, query string) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.requireInTransaction(); err != nil {
		return 0, err
	}

	result, err := u.tx.Exec(ctx, query)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Query runs a query inside the open transaction. The caller must close the
// returned rows.
func (u *UnitOfWork) Query(ctx context.Context, query string) (Rows, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.requireInTransaction(); err != nil {
		return nil, err
	}

	return u.tx.Query(ctx, query)
}

// Rows is the row iterator returned by Query.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// requireInTransaction validates that the transaction is open. Callers hold u.mu.
func (u *UnitOfWork) requireInTransaction() error {
	switch u.state {
	case stateNotStarted:
		return ErrTransactionNotStarted
	case stateCommitted, stateRolledBack:
		return ErrTransactionFinished
	case stateInTransaction:
	}

	return nil
}

// buildOutboxInsertQuery builds one multi-row insert for all pending events.
// Callers hold u.mu.
func (u *UnitOfWork) buildOutboxInsertQuery(events dispatch.DomainEvents) (string, error) {
	rows := make([][]interface{}, 0, len(events))

	for _, event := range events {
		payloadJSON, marshalErr := jsoniter.ConfigFastest.Marshal(event)
		if marshalErr != nil {
			u.logError(logMsgMarshalEventFailed, marshalErr, logAttrEventType, event.EventType())
			return "", errors.Join(ErrMarshalingEventFailed, marshalErr)
		}

		rows = append(rows, goqu.Vals{
			event.EventID().String(),
			event.EventType(),
			string(payloadJSON),
			event.HasOccurredAt(),
		})
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(u.outboxTableName).
		Cols(colEventID, colEventType, colPayload, colOccurredAt).
		Vals(rows...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		u.logError(logMsgBuildOutboxFailed, toSQLErr, logAttrEventCount, len(events))
		return "", errors.Join(ErrBuildingOutboxQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// logQueryWithDuration logs generated SQL with execution time at debug level
// if the logger is configured.
func (u *UnitOfWork) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if u.logger != nil {
		u.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, float64(duration.Microseconds())/1000, logAttrQuery, sqlQuery)
	}
}

// logError logs error information if the logger is configured.
func (u *UnitOfWork) logError(message string, err error, args ...any) {
	if u.logger != nil {
		allArgs := append([]any{logAttrError, err.Error()}, args...)
		u.logger.Error(message, allArgs...)
	}
}

// FromContext returns the postgres unit of work carried by the given dispatch
// context, so handlers can run statements inside the scope's transaction.
func FromContext(ctx context.Context) (*UnitOfWork, error) {
	uow, ok := dispatch.UnitOfWorkFromContext(ctx)
	if !ok {
		return nil, ErrNoUnitOfWorkInContext
	}

	postgresUow, ok := uow.(*UnitOfWork)
	if !ok {
		return nil, ErrNoUnitOfWorkInContext
	}

	return postgresUow, nil
}

// RecordEvent appends a domain event to the pending queue of the unit of work
// carried by the given dispatch context.
func RecordEvent(ctx context.Context, event dispatch.DomainEvent) error {
	uow, err := FromContext(ctx)
	if err != nil {
		return err
	}

	uow.RecordEvent(event)

	return nil
}

// Ensure the engine satisfies the dispatch contracts.
var (
	_ dispatch.UnitOfWork        = (*UnitOfWork)(nil)
	_ dispatch.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)
