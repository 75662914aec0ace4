package getorder_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/example/features/query/getorder"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/shell"
)

func Test_QueryHandler_Handle_ReturnsOrder(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	orders := shell.NewMemoryOrderStore()
	require.NoError(t, dispatch.RegisterHandler[getorder.Query, getorder.Result](d, getorder.NewQueryHandler(orders)))

	orderID := uuid.New()
	customerID := uuid.New()
	require.NoError(t, orders.Insert(context.Background(), core.Order{
		OrderID:    orderID,
		CustomerID: customerID,
		SKU:        "SKU-1234",
		Quantity:   3,
		Status:     core.StatusPlaced,
	}))

	// act - queries run without a unit-of-work factory configured
	result, queryErr := dispatch.Send[getorder.Result](context.Background(), d, getorder.BuildQuery(orderID))

	// assert
	require.NoError(t, queryErr)
	assert.Equal(t, orderID, result.OrderID)
	assert.Equal(t, customerID, result.CustomerID)
	assert.Equal(t, "SKU-1234", result.SKU)
	assert.Equal(t, 3, result.Quantity)
	assert.Equal(t, core.StatusPlaced, result.Status)
}

func Test_QueryHandler_Handle_UnknownOrder_NotFound(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	orders := shell.NewMemoryOrderStore()
	require.NoError(t, dispatch.RegisterHandler[getorder.Query, getorder.Result](d, getorder.NewQueryHandler(orders)))

	// act
	_, queryErr := dispatch.Send[getorder.Result](context.Background(), d, getorder.BuildQuery(uuid.New()))

	// assert
	var notFoundErr *dispatch.NotFoundError
	assert.ErrorAs(t, queryErr, &notFoundErr)
}
