// Package orderconfirmation reacts to OrderPlaced events by sending an order
// confirmation to the customer. The handler is a named type so it keeps a
// stable identity for the idempotency guard, which makes the confirmation
// exactly-once across event redeliveries.
package orderconfirmation

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
)

// ConfirmationSender is the outbound port for delivering order confirmations.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, customerID uuid.UUID, orderID uuid.UUID) error
}

// ConfirmationSenderFunc adapts a function to the ConfirmationSender interface.
type ConfirmationSenderFunc func(ctx context.Context, customerID uuid.UUID, orderID uuid.UUID) error

// SendOrderConfirmation implements ConfirmationSender.
func (f ConfirmationSenderFunc) SendOrderConfirmation(ctx context.Context, customerID uuid.UUID, orderID uuid.UUID) error {
	return f(ctx, customerID, orderID)
}

// Handler sends the confirmation for a placed order.
type Handler struct {
	sender ConfirmationSender
}

// NewHandler creates a new Handler.
func NewHandler(sender ConfirmationSender) *Handler {
	return &Handler{sender: sender}
}

// Handle implements dispatch.EventHandler.
func (h *Handler) Handle(ctx context.Context, event core.OrderPlaced) error {
	return h.sender.SendOrderConfirmation(ctx, event.CustomerID, event.OrderID)
}
