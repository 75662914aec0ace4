package placeorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
)

const commandType = "PlaceOrder"

// Command represents the intent to place a new order. It carries all the
// information required to execute the place order use case.
type Command struct {
	dispatch.CommandBase
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	SKU        string
	Quantity   int
	OccurredAt time.Time
}

// RequestType returns the type of this command for routing and observability
// purposes.
func (c Command) RequestType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	orderID uuid.UUID,
	customerID uuid.UUID,
	sku string,
	quantity int,
	occurredAt time.Time,
) Command {

	return Command{
		OrderID:    orderID,
		CustomerID: customerID,
		SKU:        sku,
		Quantity:   quantity,
		OccurredAt: occurredAt,
	}
}
