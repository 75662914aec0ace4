// Package dispatch implements a transactional request/event dispatch engine.
//
// The engine routes typed requests to exactly one registered handler through a
// composable behavior (middleware) chain and fans out domain events to
// zero-or-more handlers, each event inside its own isolated unit-of-work scope.
//
// # Requests
//
// A Request is an immutable value identified by its concrete Go type. Commands
// (state-mutating requests) embed CommandBase and always run inside a
// transaction; queries run outside one unless they implement
// TransactionalRequest. Handlers are registered per concrete request type with
// RegisterHandler and invoked with Send:
//
//	d, _ := dispatch.NewDispatcher(
//	    dispatch.WithUnitOfWorkFactory(factory),
//	)
//	_ = dispatch.RegisterHandler(d, placeorder.NewCommandHandler(...))
//	result, err := dispatch.Send[placeorder.Result](ctx, d, cmd)
//
// # Behaviors
//
// Every Send runs through the behavior chain. The built-in behaviors are
// registered first and therefore outermost, in this order: logging,
// validation, transaction. Custom behaviors appended with Use run closer to
// the handler. Each behavior decides whether to call the next stage or
// short-circuit.
//
// # Domain events
//
// A command handler records domain events on the unit of work it obtains from
// the context (UnitOfWorkFromContext). After a successful commit the
// transaction behavior drains the pending events and delivers them through
// Notify: one isolated unit-of-work scope per event, handlers invoked in
// registration order, and any events raised by event handlers themselves are
// drained and discarded so delivery never recurses.
//
// # Idempotency
//
// Event delivery is at-least-once from the point of view of a handler that
// shares an idempotency store across processes. WithIdempotencyGuard wraps an
// event handler so a redelivery of the same event to the same handler becomes
// a no-op.
//
// The package has no dependency on a concrete storage, logging, metrics, or
// tracing implementation; it consumes the narrow interfaces defined here
// (UnitOfWork, Logger, MetricsCollector, TracingCollector, ...). See the
// memoryengine and postgresengine subpackages for unit-of-work
// implementations and oteladapters for OpenTelemetry-backed observability.
package dispatch
