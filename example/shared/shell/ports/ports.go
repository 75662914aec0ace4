package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
)

// OrderStore is the persistence port the example features depend on.
// Implementations are expected to participate in the dispatch scope's
// transaction where one is open.
type OrderStore interface {
	Insert(ctx context.Context, order core.Order) error
	Get(ctx context.Context, orderID uuid.UUID) (core.Order, bool, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status core.OrderStatus) error
}

// EventRecorder appends a domain event to the pending queue of the current
// dispatch scope. Wiring binds it to the engine in use, for example
// memoryengine.RecordEvent or postgresengine.RecordEvent.
type EventRecorder func(ctx context.Context, event dispatch.DomainEvent) error
