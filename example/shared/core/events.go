package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
)

const (
	// OrderPlacedEventType is the unique name of the OrderPlaced event.
	OrderPlacedEventType = "OrderPlaced"

	// OrderConfirmedEventType is the unique name of the OrderConfirmed event.
	OrderConfirmedEventType = "OrderConfirmed"
)

// OrderPlaced is raised when a new order was accepted.
type OrderPlaced struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	SKU        string
	Quantity   int
	OccurredAt time.Time
}

// BuildOrderPlaced creates an OrderPlaced event with a fresh event identity.
func BuildOrderPlaced(orderID uuid.UUID, customerID uuid.UUID, sku string, quantity int, occurredAt time.Time) OrderPlaced {
	return OrderPlaced{
		ID:         uuid.New(),
		OrderID:    orderID,
		CustomerID: customerID,
		SKU:        sku,
		Quantity:   quantity,
		OccurredAt: occurredAt,
	}
}

// EventID returns the unique identity of this event occurrence.
func (e OrderPlaced) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of this event for routing and observability purposes.
func (e OrderPlaced) EventType() string {
	return OrderPlacedEventType
}

// HasOccurredAt returns the timestamp when this event occurred.
func (e OrderPlaced) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// OrderConfirmed is raised when a placed order was confirmed.
type OrderConfirmed struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	OccurredAt time.Time
}

// BuildOrderConfirmed creates an OrderConfirmed event with a fresh event identity.
func BuildOrderConfirmed(orderID uuid.UUID, customerID uuid.UUID, occurredAt time.Time) OrderConfirmed {
	return OrderConfirmed{
		ID:         uuid.New(),
		OrderID:    orderID,
		CustomerID: customerID,
		OccurredAt: occurredAt,
	}
}

// EventID returns the unique identity of this event occurrence.
func (e OrderConfirmed) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of this event for routing and observability purposes.
func (e OrderConfirmed) EventType() string {
	return OrderConfirmedEventType
}

// HasOccurredAt returns the timestamp when this event occurred.
func (e OrderConfirmed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// Ensure the events satisfy the dispatch contract.
var (
	_ dispatch.DomainEvent = OrderPlaced{}
	_ dispatch.DomainEvent = OrderConfirmed{}
)
