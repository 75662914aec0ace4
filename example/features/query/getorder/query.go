// Package getorder implements the Get Order query.
//
// Queries are non-transactional: the dispatcher runs them without opening a
// unit-of-work scope.
package getorder

import (
	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
)

const queryType = "GetOrder"

// Query represents the intent to read a single order.
type Query struct {
	OrderID uuid.UUID
}

// RequestType returns the type of this query for routing and observability
// purposes.
func (q Query) RequestType() string {
	return queryType
}

// BuildQuery creates a new Query for the given order.
func BuildQuery(orderID uuid.UUID) Query {
	return Query{OrderID: orderID}
}

// Result is the read model returned by the query handler.
type Result struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	SKU        string
	Quantity   int
	Status     core.OrderStatus
}
