package shell

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/example/shared/core"
	"github.com/mediatorkit/transactional-dispatch-go/example/shared/shell/ports"
)

// OrderStore is the persistence port the example features depend on. It is
// defined in the ports sub-package so the feature packages can depend on it
// without importing this package, which also contains the feature wiring.
type OrderStore = ports.OrderStore

// EventRecorder appends a domain event to the pending queue of the current
// dispatch scope. Wiring binds it to the engine in use, for example
// memoryengine.RecordEvent or postgresengine.RecordEvent.
type EventRecorder = ports.EventRecorder

// MemoryOrderStore is an in-memory OrderStore for demos and tests.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]core.Order
}

// NewMemoryOrderStore creates an empty in-memory order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[uuid.UUID]core.Order)}
}

// Insert implements OrderStore.
func (s *MemoryOrderStore) Insert(_ context.Context, order core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.OrderID] = order

	return nil
}

// Get implements OrderStore.
func (s *MemoryOrderStore) Get(_ context.Context, orderID uuid.UUID) (core.Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]

	return order, ok, nil
}

// UpdateStatus implements OrderStore.
func (s *MemoryOrderStore) UpdateStatus(_ context.Context, orderID uuid.UUID, status core.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil
	}

	order.Status = status
	s.orders[orderID] = order

	return nil
}

var _ OrderStore = (*MemoryOrderStore)(nil)
