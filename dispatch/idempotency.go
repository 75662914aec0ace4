package dispatch

import (
	"context"
	"reflect"

	"github.com/google/uuid"
)

// IdempotencyStore records which events have already been processed by which
// handler, enabling exactly-once effects on top of at-least-once delivery.
// Records may outlive a single process, so handler identities must be stable
// across restarts.
type IdempotencyStore interface {
	// HasBeenProcessed reports whether the given event has already been
	// processed by the handler with the given identity.
	HasBeenProcessed(ctx context.Context, eventID uuid.UUID, handlerIdentity string) (bool, error)

	// MarkProcessed records that the given event was processed by the handler
	// with the given identity. It is called only after the handler completed
	// successfully.
	MarkProcessed(ctx context.Context, eventID uuid.UUID, eventType string, handlerIdentity string) error
}

// HandlerIdentity derives a stable identity for an event handler from its
// package path and type name, e.g.
// "example/features/eventhandler/orderconfirmation.Handler". The identity
// survives process restarts as long as the type keeps its name and package.
//
// Anonymous function adapters fall back to the Go type string, which is not
// guaranteed stable across refactorings; use named handler types with the
// idempotency guard.
func HandlerIdentity(handler any) string {
	handlerType := reflect.TypeOf(handler)

	for handlerType.Kind() == reflect.Pointer {
		handlerType = handlerType.Elem()
	}

	if handlerType.PkgPath() == "" || handlerType.Name() == "" {
		return handlerType.String()
	}

	return handlerType.PkgPath() + "." + handlerType.Name()
}

// idempotencyGuard decorates a single event handler with the check/mark
// protocol against an IdempotencyStore.
type idempotencyGuard[E DomainEvent] struct {
	store    IdempotencyStore
	inner    EventHandler[E]
	identity string
}

// WithIdempotencyGuard wraps an event handler so a redelivery of the same
// event to the same handler is a no-op. The wrapped logic runs first; only on
// successful completion is the {event, handler} pair recorded. If the wrapped
// logic fails, nothing is recorded and a subsequent redelivery retries from
// scratch.
func WithIdempotencyGuard[E DomainEvent](store IdempotencyStore, handler EventHandler[E]) EventHandler[E] {
	return &idempotencyGuard[E]{
		store:    store,
		inner:    handler,
		identity: HandlerIdentity(handler),
	}
}

func (g *idempotencyGuard[E]) Handle(ctx context.Context, event E) error {
	processed, err := g.store.HasBeenProcessed(ctx, event.EventID(), g.identity)
	if err != nil {
		return err
	}

	if processed {
		return nil
	}

	if err = g.inner.Handle(ctx, event); err != nil {
		return err
	}

	return g.store.MarkProcessed(ctx, event.EventID(), event.EventType(), g.identity)
}
