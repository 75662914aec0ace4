package shell

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch/postgresengine"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
)

// ErrBuildingOrderQueryFailed indicates that an order statement could not be
// built.
var ErrBuildingOrderQueryFailed = errors.New("building order query failed")

const ordersTableName = "orders"

const (
	colOrderID    = "order_id"
	colCustomerID = "customer_id"
	colSKU        = "sku"
	colQuantity   = "quantity"
	colStatus     = "status"
)

// PostgresOrderStore is an OrderStore that runs its statements inside the
// postgres unit of work carried by the dispatch context. Order rows and outbox
// entries become durable in the same commit.
type PostgresOrderStore struct{}

// NewPostgresOrderStore creates a PostgresOrderStore.
func NewPostgresOrderStore() *PostgresOrderStore {
	return &PostgresOrderStore{}
}

// Insert implements OrderStore.
func (s *PostgresOrderStore) Insert(ctx context.Context, order core.Order) error {
	uow, err := postgresengine.FromContext(ctx)
	if err != nil {
		return err
	}

	insertStmt := goqu.Dialect("postgres").
		Insert(ordersTableName).
		Cols(colOrderID, colCustomerID, colSKU, colQuantity, colStatus).
		Vals(goqu.Vals{
			order.OrderID.String(),
			order.CustomerID.String(),
			order.SKU,
			order.Quantity,
			string(order.Status),
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingOrderQueryFailed, toSQLErr)
	}

	_, execErr := uow.Exec(ctx, sqlQuery)

	return execErr
}

// Get implements OrderStore.
func (s *PostgresOrderStore) Get(ctx context.Context, orderID uuid.UUID) (core.Order, bool, error) {
	uow, err := postgresengine.FromContext(ctx)
	if err != nil {
		return core.Order{}, false, err
	}

	selectStmt := goqu.Dialect("postgres").
		From(ordersTableName).
		Select(colOrderID, colCustomerID, colSKU, colQuantity, colStatus).
		Where(goqu.C(colOrderID).Eq(orderID.String())).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return core.Order{}, false, errors.Join(ErrBuildingOrderQueryFailed, toSQLErr)
	}

	rows, queryErr := uow.Query(ctx, sqlQuery)
	if queryErr != nil {
		return core.Order{}, false, queryErr
	}

	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return core.Order{}, false, nil
	}

	var (
		rawOrderID    string
		rawCustomerID string
		order         core.Order
		rawStatus     string
	)

	if scanErr := rows.Scan(&rawOrderID, &rawCustomerID, &order.SKU, &order.Quantity, &rawStatus); scanErr != nil {
		return core.Order{}, false, scanErr
	}

	order.OrderID, err = uuid.Parse(rawOrderID)
	if err != nil {
		return core.Order{}, false, err
	}

	order.CustomerID, err = uuid.Parse(rawCustomerID)
	if err != nil {
		return core.Order{}, false, err
	}

	order.Status = core.OrderStatus(rawStatus)

	return order, true, nil
}

// UpdateStatus implements OrderStore.
func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, orderID uuid.UUID, status core.OrderStatus) error {
	uow, err := postgresengine.FromContext(ctx)
	if err != nil {
		return err
	}

	updateStmt := goqu.Dialect("postgres").
		Update(ordersTableName).
		Set(goqu.Record{colStatus: string(status)}).
		Where(goqu.C(colOrderID).Eq(orderID.String()))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingOrderQueryFailed, toSQLErr)
	}

	_, execErr := uow.Exec(ctx, sqlQuery)

	return execErr
}

var _ OrderStore = (*PostgresOrderStore)(nil)
