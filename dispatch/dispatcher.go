package dispatch

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Dispatcher is the engine façade. It routes typed requests to their single
// registered handler through the behavior chain (Send) and fans out domain
// events to their registered handlers in isolated unit-of-work scopes
// (Notify).
//
// A Dispatcher is safe for concurrent use once configuration is done.
// Registration (handlers, validators, behaviors) is expected to be complete
// before the first dispatch of the affected type.
type Dispatcher struct {
	mu            sync.RWMutex
	handlers      map[reflect.Type]*handlerBinding
	validators    map[reflect.Type][]boundValidator
	eventHandlers map[reflect.Type][]eventHandlerBinding

	// Resolution caches; process-wide, read-mostly, safe for concurrent
	// population.
	bindingCache      sync.Map // reflect.Type -> *handlerBinding
	eventBindingCache sync.Map // reflect.Type -> []eventHandlerBinding

	behaviors []Behavior

	uowFactory UnitOfWorkFactory
	propagator ScopeContextPropagator

	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewDispatcher creates a Dispatcher configured by the given options and
// installs the built-in behaviors in their fixed order: logging, validation,
// transaction. Custom behaviors appended with Use run after them.
func NewDispatcher(options ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers:      make(map[reflect.Type]*handlerBinding),
		validators:    make(map[reflect.Type][]boundValidator),
		eventHandlers: make(map[reflect.Type][]eventHandlerBinding),
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	d.behaviors = append([]Behavior{
		&loggingBehavior{d: d},
		&validationBehavior{d: d},
		&transactionBehavior{d: d},
	}, d.behaviors...)

	return d, nil
}

// Use appends custom behaviors to the pipeline, after the built-ins and in
// the given order, so later additions run closer to the handler. Behaviors
// must be added before the first dispatch.
func (d *Dispatcher) Use(behaviors ...Behavior) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.behaviors = append(d.behaviors, behaviors...)
}

// Send routes the request through the behavior chain to its single registered
// handler and returns the handler's response as type R.
//
// It fails with ErrHandlerNotFound when no handler is registered for the
// request's concrete type and with ErrResponseTypeMismatch when R does not
// match the registered handler's response type.
//
// This is a package-level function (not a method) because Go methods cannot
// carry type parameters independent of their receiver.
func Send[R any](ctx context.Context, d *Dispatcher, request Request) (R, error) {
	var zero R

	result, err := d.send(ctx, request)
	if err != nil {
		return zero, err
	}

	response, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T", ErrResponseTypeMismatch, result)
	}

	return response, nil
}

// send resolves the handler binding and runs the composed pipeline.
func (d *Dispatcher) send(ctx context.Context, request Request) (any, error) {
	if request == nil {
		return nil, ErrNilRequest
	}

	binding, err := d.resolveBinding(request)
	if err != nil {
		return nil, err
	}

	terminal := Next(func(ctx context.Context) (any, error) {
		return binding.invoke(ctx, request)
	})

	d.mu.RLock()
	behaviors := d.behaviors
	d.mu.RUnlock()

	pipeline := buildPipeline(request, behaviors, terminal)

	return pipeline(ctx)
}
