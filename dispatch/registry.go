package dispatch

import (
	"context"
	"fmt"
	"reflect"
)

// Handler processes exactly one request type T and produces a response of
// type R. One handler per request type is registered with RegisterHandler.
type Handler[T Request, R any] interface {
	Handle(ctx context.Context, request T) (R, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc[T Request, R any] func(ctx context.Context, request T) (R, error)

// Handle implements the Handler interface.
func (f HandlerFunc[T, R]) Handle(ctx context.Context, request T) (R, error) {
	return f(ctx, request)
}

// EventHandler processes domain events of type E. Zero or more handlers per
// event type are registered with RegisterEventHandler and invoked in
// registration order.
type EventHandler[E DomainEvent] interface {
	Handle(ctx context.Context, event E) error
}

// EventHandlerFunc is a function adapter for EventHandler.
type EventHandlerFunc[E DomainEvent] func(ctx context.Context, event E) error

// Handle implements the EventHandler interface.
func (f EventHandlerFunc[E]) Handle(ctx context.Context, event E) error {
	return f(ctx, event)
}

// handlerBinding is the resolved association between a request type, its
// response type, and a type-erased invocation of the registered handler.
// It is a registration-time fact; once resolved it is cached for the process
// lifetime and never invalidated.
type handlerBinding struct {
	requestType  reflect.Type
	responseType reflect.Type
	invoke       func(ctx context.Context, request Request) (any, error)
}

// eventHandlerBinding is a type-erased event handler invocation plus the
// handler's stable identity for logging.
type eventHandlerBinding struct {
	identity string
	invoke   func(ctx context.Context, event DomainEvent) error
}

// RegisterHandler binds h as the single handler for request type T. The
// response type R is captured at registration time so no runtime type
// introspection is needed on the dispatch path.
//
// This is a package-level function (not a method) because Go methods cannot
// carry type parameters independent of their receiver.
func RegisterHandler[T Request, R any](d *Dispatcher, h Handler[T, R]) error {
	if h == nil {
		return ErrNilHandler
	}

	requestType := reflect.TypeOf((*T)(nil)).Elem()
	responseType := reflect.TypeOf((*R)(nil)).Elem()

	binding := &handlerBinding{
		requestType:  requestType,
		responseType: responseType,
		invoke: func(ctx context.Context, request Request) (any, error) {
			typedRequest, ok := request.(T)
			if !ok {
				return nil, fmt.Errorf("request %T is not of registered type %s", request, requestType)
			}

			return h.Handle(ctx, typedRequest)
		},
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[requestType]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, requestType)
	}

	d.handlers[requestType] = binding

	return nil
}

// RegisterHandlerFunc is a convenience function for registering a handler function.
func RegisterHandlerFunc[T Request, R any](d *Dispatcher, fn func(ctx context.Context, request T) (R, error)) error {
	return RegisterHandler(d, HandlerFunc[T, R](fn))
}

// RegisterEventHandler appends h to the handlers for event type E.
// Handlers are invoked in registration order during notification.
func RegisterEventHandler[E DomainEvent](d *Dispatcher, h EventHandler[E]) error {
	if h == nil {
		return ErrNilHandler
	}

	eventType := reflect.TypeOf((*E)(nil)).Elem()

	binding := eventHandlerBinding{
		identity: HandlerIdentity(h),
		invoke: func(ctx context.Context, event DomainEvent) error {
			typedEvent, ok := event.(E)
			if !ok {
				return fmt.Errorf("event %T is not of registered type %s", event, eventType)
			}

			return h.Handle(ctx, typedEvent)
		},
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.eventHandlers[eventType] = append(d.eventHandlers[eventType], binding)

	return nil
}

// RegisterEventHandlerFunc is a convenience function for registering an event
// handler function.
func RegisterEventHandlerFunc[E DomainEvent](d *Dispatcher, fn func(ctx context.Context, event E) error) error {
	return RegisterEventHandler(d, EventHandlerFunc[E](fn))
}

// RegisterValidator appends v to the validators for request type T.
// Validators run in registration order inside the validation behavior.
func RegisterValidator[T Request](d *Dispatcher, v Validator[T]) error {
	if v == nil {
		return ErrNilHandler
	}

	requestType := reflect.TypeOf((*T)(nil)).Elem()

	bound := boundValidator(func(ctx context.Context, request Request) ([]FieldError, error) {
		typedRequest, ok := request.(T)
		if !ok {
			return nil, fmt.Errorf("request %T is not of registered type %s", request, requestType)
		}

		return v.Validate(ctx, typedRequest)
	})

	d.mu.Lock()
	defer d.mu.Unlock()

	d.validators[requestType] = append(d.validators[requestType], bound)

	return nil
}

// RegisterValidatorFunc is a convenience function for registering a validator function.
func RegisterValidatorFunc[T Request](d *Dispatcher, fn func(ctx context.Context, request T) ([]FieldError, error)) error {
	return RegisterValidator(d, ValidatorFunc[T](fn))
}

// resolveBinding locates the handler binding for the concrete type of the
// given request. Bindings are cached in a concurrent map; a race on first
// resolution loses a redundant lookup, not correctness. A missing handler is
// only detected here, at dispatch time.
func (d *Dispatcher) resolveBinding(request Request) (*handlerBinding, error) {
	requestType := reflect.TypeOf(request)

	if cached, ok := d.bindingCache.Load(requestType); ok {
		return cached.(*handlerBinding), nil
	}

	d.mu.RLock()
	binding, ok := d.handlers[requestType]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, requestTypeName(request))
	}

	d.bindingCache.Store(requestType, binding)

	return binding, nil
}

// validatorsFor returns the validators registered for the concrete type of
// the given request, in registration order.
func (d *Dispatcher) validatorsFor(request Request) []boundValidator {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.validators[reflect.TypeOf(request)]
}

// eventHandlersFor returns the handlers registered for the concrete type of
// the given event, in registration order. The resolved list is cached per
// concrete event type.
func (d *Dispatcher) eventHandlersFor(event DomainEvent) []eventHandlerBinding {
	eventType := reflect.TypeOf(event)

	if cached, ok := d.eventBindingCache.Load(eventType); ok {
		return cached.([]eventHandlerBinding)
	}

	d.mu.RLock()
	bindings := d.eventHandlers[eventType]
	d.mu.RUnlock()

	if bindings != nil {
		d.eventBindingCache.Store(eventType, bindings)
	}

	return bindings
}
