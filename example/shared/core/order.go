package core

import (
	"github.com/google/uuid"
)

// OrderStatus models the lifecycle of an order.
type OrderStatus string

const (
	// StatusPlaced is the initial status after a successful PlaceOrder command.
	StatusPlaced OrderStatus = "placed"

	// StatusConfirmed is the status after a successful ConfirmOrder command.
	StatusConfirmed OrderStatus = "confirmed"
)

// Order is the aggregate the example features operate on.
type Order struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	SKU        string
	Quantity   int
	Status     OrderStatus
}
