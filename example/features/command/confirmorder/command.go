// Package confirmorder implements the Confirm Order use case.
//
// Confirming an order moves it from placed to confirmed and raises
// OrderConfirmed. Confirming an unknown order fails with a NotFoundError;
// confirming an already-confirmed order is rejected with a ConflictError.
package confirmorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
)

const commandType = "ConfirmOrder"

// Command represents the intent to confirm a placed order.
type Command struct {
	dispatch.CommandBase
	OrderID    uuid.UUID
	OccurredAt time.Time
}

// RequestType returns the type of this command for routing and observability
// purposes.
func (c Command) RequestType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(orderID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		OrderID:    orderID,
		OccurredAt: occurredAt,
	}
}
