package dispatch

import (
	"errors"
)

var (
	// ErrNilUnitOfWorkFactory is returned when WithUnitOfWorkFactory is given nil.
	ErrNilUnitOfWorkFactory = errors.New("unit of work factory must not be nil")

	// ErrNilObservabilityComponent is returned when an observability option is given nil.
	ErrNilObservabilityComponent = errors.New("observability component must not be nil")
)

// Option defines a functional option for configuring a Dispatcher.
type Option func(*Dispatcher) error

// WithUnitOfWorkFactory sets the factory the engine uses to create one fresh
// unit of work per transactional request and per delivered event. It is
// required as soon as commands, explicitly transactional requests, or event
// notification are dispatched.
func WithUnitOfWorkFactory(factory UnitOfWorkFactory) Option {
	return func(d *Dispatcher) error {
		if factory == nil {
			return ErrNilUnitOfWorkFactory
		}

		d.uowFactory = factory

		return nil
	}
}

// WithScopeContextPropagator sets the optional propagator that copies ambient
// identity, tenant, or correlation data into each per-event scope's context.
// Without one, event scopes inherit the parent context unchanged.
func WithScopeContextPropagator(propagator ScopeContextPropagator) Option {
	return func(d *Dispatcher) error {
		d.propagator = propagator
		return nil
	}
}

// WithLogger sets the logger for the Dispatcher.
//
// Debug level: dispatch start, event delivery, discarded pending events
// Info level: completed dispatches and deliveries with durations
// Warn level: expected request failures, rollback problems
// Error level: unexpected failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			return ErrNilObservabilityComponent
		}

		d.logger = logger

		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the Dispatcher.
// When both a Logger and a ContextualLogger are configured, the contextual
// one is preferred, enabling automatic trace/span correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			return ErrNilObservabilityComponent
		}

		d.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector for the Dispatcher. The collector
// receives send/notify durations, error counters, and delivered/discarded
// event counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(d *Dispatcher) error {
		if collector == nil {
			return ErrNilObservabilityComponent
		}

		d.metricsCollector = collector

		return nil
	}
}

// WithTracing sets the tracing collector for the Dispatcher. The collector
// receives one span per dispatched request and per delivered event, with
// status and error-type attributes.
func WithTracing(collector TracingCollector) Option {
	return func(d *Dispatcher) error {
		if collector == nil {
			return ErrNilObservabilityComponent
		}

		d.tracingCollector = collector

		return nil
	}
}

// WithBehaviors appends custom behaviors at construction time, equivalent to
// calling Use afterwards.
func WithBehaviors(behaviors ...Behavior) Option {
	return func(d *Dispatcher) error {
		d.behaviors = append(d.behaviors, behaviors...)
		return nil
	}
}
