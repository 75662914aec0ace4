package memoryengine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
)

// processedKey identifies one {event, handler} processing record.
type processedKey struct {
	eventID         uuid.UUID
	handlerIdentity string
}

// IdempotencyStore is an in-memory implementation of
// dispatch.IdempotencyStore. Records live for the process lifetime only, so
// it provides idempotent redelivery within one process but not across
// restarts.
type IdempotencyStore struct {
	mu        sync.RWMutex
	processed map[processedKey]string // value: event type discriminator
}

// NewIdempotencyStore creates an empty in-memory idempotency store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		processed: make(map[processedKey]string),
	}
}

// HasBeenProcessed implements dispatch.IdempotencyStore.
func (s *IdempotencyStore) HasBeenProcessed(_ context.Context, eventID uuid.UUID, handlerIdentity string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.processed[processedKey{eventID: eventID, handlerIdentity: handlerIdentity}]

	return ok, nil
}

// MarkProcessed implements dispatch.IdempotencyStore.
func (s *IdempotencyStore) MarkProcessed(_ context.Context, eventID uuid.UUID, eventType string, handlerIdentity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed[processedKey{eventID: eventID, handlerIdentity: handlerIdentity}] = eventType

	return nil
}

// Len returns the number of processing records, in support of tests.
func (s *IdempotencyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.processed)
}

var _ dispatch.IdempotencyStore = (*IdempotencyStore)(nil)
