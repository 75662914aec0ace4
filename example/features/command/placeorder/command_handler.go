package placeorder

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/shell/ports"
)

// CommandHandler executes the place order use case: persist the order inside
// the dispatch scope's transaction and raise OrderPlaced into the scope's
// pending-event queue. The event is delivered after the transaction commits.
type CommandHandler struct {
	orders      ports.OrderStore
	recordEvent ports.EventRecorder
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(orders ports.OrderStore, recordEvent ports.EventRecorder) CommandHandler {
	return CommandHandler{
		orders:      orders,
		recordEvent: recordEvent,
	}
}

// Handle implements dispatch.Handler. It returns the identity of the placed
// order.
func (h CommandHandler) Handle(ctx context.Context, command Command) (uuid.UUID, error) {
	_, exists, err := h.orders.Get(ctx, command.OrderID)
	if err != nil {
		return uuid.Nil, err
	}

	if exists {
		return uuid.Nil, &dispatch.ConflictError{Message: "order has already been placed"}
	}

	order := core.Order{
		OrderID:    command.OrderID,
		CustomerID: command.CustomerID,
		SKU:        command.SKU,
		Quantity:   command.Quantity,
		Status:     core.StatusPlaced,
	}

	if err = h.orders.Insert(ctx, order); err != nil {
		return uuid.Nil, err
	}

	event := core.BuildOrderPlaced(command.OrderID, command.CustomerID, command.SKU, command.Quantity, command.OccurredAt)
	if err = h.recordEvent(ctx, event); err != nil {
		return uuid.Nil, err
	}

	return command.OrderID, nil
}
