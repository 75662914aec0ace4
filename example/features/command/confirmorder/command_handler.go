package confirmorder

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/shell/ports"
)

// CommandHandler executes the confirm order use case.
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

// Handle implements dispatch.Handler. It returns the identity of the confirmed
// order.
func (h CommandHandler) Handle(ctx context.Context, command Command) (uuid.UUID, error) {
	order, exists, err := h.orders.Get(ctx, command.OrderID)
	if err != nil {
		return uuid.Nil, err
	}

	if !exists {
		return uuid.Nil, &dispatch.NotFoundError{Resource: "Order", Key: command.OrderID.String()}
	}

	if order.Status == core.StatusConfirmed {
		return uuid.Nil, &dispatch.ConflictError{Message: "order has already been confirmed"}
	}

	if err = h.orders.UpdateStatus(ctx, command.OrderID, core.StatusConfirmed); err != nil {
		return uuid.Nil, err
	}

	event := core.BuildOrderConfirmed(command.OrderID, order.CustomerID, command.OccurredAt)
	if err = h.recordEvent(ctx, event); err != nil {
		return uuid.Nil, err
	}

	return command.OrderID, nil
}
