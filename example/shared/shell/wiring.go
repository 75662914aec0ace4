package shell

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/postgresengine"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/command/confirmorder"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/command/placeorder"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/eventhandler/orderconfirmation"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/query/getorder"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/config"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
)

// NewPostgresDispatcher wires the full example application against PostgreSQL:
// the unit-of-work factory writing the outbox, the idempotency store guarding
// the confirmation handler, and every feature slice.
func NewPostgresDispatcher(
	ctx context.Context,
	cfg config.Config,
	sender orderconfirmation.ConfirmationSender,
	dispatcherOptions ...dispatch.Option,
) (*dispatch.Dispatcher, *pgxpool.Pool, error) {

	poolConfig, err := cfg.PGXPoolConfig()
	if err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	uowFactory, err := postgresengine.NewUnitOfWorkFactoryFromPGXPool(
		pool,
		postgresengine.WithOutboxTableName(cfg.OutboxTable),
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	processedStore, err := postgresengine.NewIdempotencyStoreFromPGXPool(
		pool,
		postgresengine.WithProcessedTableName(cfg.ProcessedTable),
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	options := append([]dispatch.Option{dispatch.WithUnitOfWorkFactory(uowFactory)}, dispatcherOptions...)

	d, err := dispatch.NewDispatcher(options...)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	orders := NewPostgresOrderStore()

	if err = RegisterFeatures(d, orders, postgresengine.RecordEvent, processedStore, sender); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return d, pool, nil
}

// RegisterFeatures registers every feature slice of the example application on
// the given dispatcher. The engine-specific pieces (order store, event
// recorder, idempotency store) are injected, so the same registration works
// for the postgres and the in-memory wiring.
func RegisterFeatures(
	d *dispatch.Dispatcher,
	orders OrderStore,
	recordEvent EventRecorder,
	processedStore dispatch.IdempotencyStore,
	sender orderconfirmation.ConfirmationSender,
) error {

	if err := dispatch.RegisterHandler[placeorder.Command, uuid.UUID](d, placeorder.NewCommandHandler(orders, recordEvent)); err != nil {
		return err
	}

	if err := dispatch.RegisterValidator[placeorder.Command](d, placeorder.NewValidator()); err != nil {
		return err
	}

	if err := dispatch.RegisterHandler[confirmorder.Command, uuid.UUID](d, confirmorder.NewCommandHandler(orders, recordEvent)); err != nil {
		return err
	}

	if err := dispatch.RegisterHandler[getorder.Query, getorder.Result](d, getorder.NewQueryHandler(orders)); err != nil {
		return err
	}

	confirmationHandler := dispatch.WithIdempotencyGuard[core.OrderPlaced](processedStore, orderconfirmation.NewHandler(sender))

	return dispatch.RegisterEventHandler(d, confirmationHandler)
}
