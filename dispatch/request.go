package dispatch

import (
	"reflect"
)

// Request represents the contract for all request types handled by the engine.
// Each request encapsulates the intent and parameters of one operation.
// The RequestType method enables polymorphic handling and observability
// instrumentation; by convention it returns a stable, human-readable name
// such as "PlaceOrder".
//
// A request is constructed by the caller, consumed once by the dispatcher,
// and never mutated.
type Request interface {
	RequestType() string
}

// Command marks a state-mutating request. Commands always run inside a
// transaction owned by the transaction behavior.
//
// Concrete commands satisfy this interface by embedding CommandBase:
//
//	type PlaceOrder struct {
//	    dispatch.CommandBase
//	    OrderID uuid.UUID
//	}
type Command interface {
	Request
	mutatesState()
}

// CommandBase is embedded by concrete command types to mark them as
// state-mutating. It carries no data.
type CommandBase struct{}

func (CommandBase) mutatesState() {}

// TransactionalRequest opts a non-Command request into the transactional
// lifecycle. Commands ignore this interface - they are always transactional.
type TransactionalRequest interface {
	RequiresTransaction() bool
}

// requiresTransaction reports whether the transaction behavior must open a
// unit of work for the given request.
func requiresTransaction(request Request) bool {
	if _, isCommand := request.(Command); isCommand {
		return true
	}

	if transactional, ok := request.(TransactionalRequest); ok {
		return transactional.RequiresTransaction()
	}

	return false
}

// requestTypeName returns a stable name for error messages and log attributes,
// preferring the request's own RequestType over its Go type.
func requestTypeName(request Request) string {
	if request == nil {
		return "<nil>"
	}

	if name := request.RequestType(); name != "" {
		return name
	}

	return reflect.TypeOf(request).String()
}
