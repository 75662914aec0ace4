// Command ordersdemo runs the example order flow against the in-memory
// engine: place an order, read it back, confirm it, and observe the
// post-commit events arriving at the confirmation handler.
//
// Set POSTGRES_DSN and use shell.NewPostgresDispatcher instead to run the
// same flow against PostgreSQL.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/memoryengine"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/oteladapters"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/command/confirmorder"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/command/placeorder"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/eventhandler/orderconfirmation"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/query/getorder"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/shell"
)

func main() {
	logHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(logHandler)

	d, err := dispatch.NewDispatcher(
		dispatch.WithUnitOfWorkFactory(memoryengine.NewFactory()),
		dispatch.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler(logHandler)),
	)
	if err != nil {
		logger.Error("building dispatcher failed", "error", err)
		os.Exit(1)
	}

	orders := shell.NewMemoryOrderStore()
	processedStore := memoryengine.NewIdempotencyStore()

	sender := orderconfirmation.ConfirmationSenderFunc(
		func(_ context.Context, customerID uuid.UUID, orderID uuid.UUID) error {
			logger.Info("order confirmation sent", "customer_id", customerID, "order_id", orderID)
			return nil
		})

	if err = shell.RegisterFeatures(d, orders, memoryengine.RecordEvent, processedStore, sender); err != nil {
		logger.Error("registering features failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	orderID := uuid.New()
	customerID := uuid.New()

	placedID, err := dispatch.Send[uuid.UUID](ctx, d,
		placeorder.BuildCommand(orderID, customerID, "SKU-1234", 2, time.Now()))
	if err != nil {
		logger.Error("placing order failed", "error", err)
		os.Exit(1)
	}

	logger.Info("order placed", "order_id", placedID)

	result, err := dispatch.Send[getorder.Result](ctx, d, getorder.BuildQuery(orderID))
	if err != nil {
		logger.Error("reading order failed", "error", err)
		os.Exit(1)
	}

	logger.Info("order read", "order_id", result.OrderID, "status", string(result.Status))

	if _, err = dispatch.Send[uuid.UUID](ctx, d, confirmorder.BuildCommand(orderID, time.Now())); err != nil {
		logger.Error("confirming order failed", "error", err)
		os.Exit(1)
	}

	logger.Info("order confirmed", "order_id", orderID)
}
