package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/memoryengine"
)

// countingEventHandler is a named handler type so HandlerIdentity derives a
// stable identity for it.
type countingEventHandler struct {
	mu          sync.Mutex
	invocations int
	failWith    error
}

func (h *countingEventHandler) Handle(_ context.Context, _ readerRegistered) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.invocations++

	return h.failWith
}

func (h *countingEventHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.invocations
}

// secondaryEventHandler is a distinct handler type for the same event.
type secondaryEventHandler struct {
	invocations int
}

func (h *secondaryEventHandler) Handle(_ context.Context, _ readerRegistered) error {
	h.invocations++
	return nil
}

func Test_IdempotencyGuard_FirstDelivery_InvokesHandlerAndRecordsPair(t *testing.T) {
	// setup
	store := memoryengine.NewIdempotencyStore()
	inner := &countingEventHandler{}
	guarded := dispatch.WithIdempotencyGuard[readerRegistered](store, inner)

	event := buildReaderRegistered(uuid.New())

	// act
	handleErr := guarded.Handle(context.Background(), event)

	// assert
	require.NoError(t, handleErr)
	assert.Equal(t, 1, inner.count())

	processed, checkErr := store.HasBeenProcessed(context.Background(), event.ID, dispatch.HandlerIdentity(inner))
	require.NoError(t, checkErr)
	assert.True(t, processed)
}

func Test_IdempotencyGuard_Redelivery_IsNoOp(t *testing.T) {
	// setup
	store := memoryengine.NewIdempotencyStore()
	inner := &countingEventHandler{}
	guarded := dispatch.WithIdempotencyGuard[readerRegistered](store, inner)

	event := buildReaderRegistered(uuid.New())
	require.NoError(t, guarded.Handle(context.Background(), event))

	// act
	handleErr := guarded.Handle(context.Background(), event)

	// assert
	require.NoError(t, handleErr)
	assert.Equal(t, 1, inner.count(), "a redelivered event must not reach the handler again")
	assert.Equal(t, 1, store.Len())
}

func Test_IdempotencyGuard_SameEventDifferentHandler_StillInvoked(t *testing.T) {
	// setup
	store := memoryengine.NewIdempotencyStore()
	first := &countingEventHandler{}
	second := &secondaryEventHandler{}

	guardedFirst := dispatch.WithIdempotencyGuard[readerRegistered](store, first)
	guardedSecond := dispatch.WithIdempotencyGuard[readerRegistered](store, second)

	event := buildReaderRegistered(uuid.New())
	require.NoError(t, guardedFirst.Handle(context.Background(), event))

	// act
	handleErr := guardedSecond.Handle(context.Background(), event)

	// assert - the processed record is per {event, handler} pair
	require.NoError(t, handleErr)
	assert.Equal(t, 1, second.invocations)
	assert.Equal(t, 2, store.Len())
}

func Test_IdempotencyGuard_HandlerFailure_IsNotRecorded(t *testing.T) {
	// setup
	store := memoryengine.NewIdempotencyStore()
	inner := &countingEventHandler{failWith: errors.New("smtp unavailable")}
	guarded := dispatch.WithIdempotencyGuard[readerRegistered](store, inner)

	event := buildReaderRegistered(uuid.New())

	// act
	firstErr := guarded.Handle(context.Background(), event)

	inner.failWith = nil
	secondErr := guarded.Handle(context.Background(), event)

	// assert - the failed attempt left no record, so the retry runs the handler
	require.Error(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, 1, store.Len())
}

func Test_HandlerIdentity_DerivesStableNameFromType(t *testing.T) {
	// setup
	handler := &countingEventHandler{}

	// act
	identity := dispatch.HandlerIdentity(handler)

	// assert - package path plus type name, pointer indirection stripped
	assert.Contains(t, identity, "dispatch_test")
	assert.Contains(t, identity, "countingEventHandler")
	assert.Equal(t, identity, dispatch.HandlerIdentity(countingEventHandler{}))
}

func Test_HandlerIdentity_AnonymousFunc_FallsBackToTypeString(t *testing.T) {
	// setup
	handler := dispatch.EventHandlerFunc[readerRegistered](func(_ context.Context, _ readerRegistered) error {
		return nil
	})

	// act
	identity := dispatch.HandlerIdentity(handler)

	// assert
	assert.NotEmpty(t, identity)
}
