package getorder

import (
	"context"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/shell/ports"
)

// QueryHandler answers Get Order queries from the order store.
type QueryHandler struct {
	orders ports.OrderStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(orders ports.OrderStore) QueryHandler {
	return QueryHandler{orders: orders}
}

// Handle implements dispatch.Handler.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	order, exists, err := h.orders.Get(ctx, query.OrderID)
	if err != nil {
		return Result{}, err
	}

	if !exists {
		return Result{}, &dispatch.NotFoundError{Resource: "Order", Key: query.OrderID.String()}
	}

	return Result{
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		SKU:        order.SKU,
		Quantity:   order.Quantity,
		Status:     order.Status,
	}, nil
}
