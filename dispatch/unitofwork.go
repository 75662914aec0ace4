package dispatch

import (
	"context"
)

// UnitOfWork is the transactional collaborator owned by exactly one dispatch
// scope: either an original request's scope or one event's isolated scope
// created during notification. No two scopes may share an instance.
//
// The pending-event queue is owned and mutated by the unit of work itself;
// the engine only ever calls GetAndClearPendingEvents on it, on both the
// success and the failure path, so no events can leak into a later request
// that happens to reuse the same factory.
type UnitOfWork interface {
	// BeginTransaction opens the transaction for this scope.
	BeginTransaction(ctx context.Context) error

	// SaveChanges persists pending changes inside the open transaction.
	SaveChanges(ctx context.Context) error

	// CommitTransaction commits the open transaction.
	CommitTransaction(ctx context.Context) error

	// RollbackTransaction rolls the open transaction back.
	RollbackTransaction(ctx context.Context) error

	// GetAndClearPendingEvents atomically snapshots and empties the queue of
	// domain events recorded since the last drain, in the order they were
	// recorded.
	GetAndClearPendingEvents() DomainEvents
}

// UnitOfWorkFactory creates a fresh UnitOfWork per scope. The transaction
// behavior calls it once per transactional request; the notifier calls it
// once per delivered event.
type UnitOfWorkFactory interface {
	NewUnitOfWork(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWorkFactoryFunc is a function adapter for UnitOfWorkFactory.
type UnitOfWorkFactoryFunc func(ctx context.Context) (UnitOfWork, error)

// NewUnitOfWork implements the UnitOfWorkFactory interface.
func (f UnitOfWorkFactoryFunc) NewUnitOfWork(ctx context.Context) (UnitOfWork, error) {
	return f(ctx)
}

// ScopeContextPropagator copies ambient identity, tenant, or correlation data
// from a parent context into the context handed to a freshly created event
// scope. Registration is optional; without one, event scopes inherit the
// parent context unchanged.
type ScopeContextPropagator interface {
	Propagate(parent context.Context) context.Context
}

// ScopeContextPropagatorFunc is a function adapter for ScopeContextPropagator.
type ScopeContextPropagatorFunc func(parent context.Context) context.Context

// Propagate implements the ScopeContextPropagator interface.
func (f ScopeContextPropagatorFunc) Propagate(parent context.Context) context.Context {
	return f(parent)
}

type unitOfWorkContextKey struct{}

// ContextWithUnitOfWork returns a context carrying the unit of work that owns
// the current scope. The transaction behavior and the notifier place it there
// so handlers can record domain events and join the open transaction.
func ContextWithUnitOfWork(ctx context.Context, uow UnitOfWork) context.Context {
	return context.WithValue(ctx, unitOfWorkContextKey{}, uow)
}

// UnitOfWorkFromContext returns the unit of work owning the current scope,
// or false when the request is running outside a transactional scope.
func UnitOfWorkFromContext(ctx context.Context) (UnitOfWork, bool) {
	uow, ok := ctx.Value(unitOfWorkContextKey{}).(UnitOfWork)
	return uow, ok
}
