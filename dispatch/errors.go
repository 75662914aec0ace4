package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHandlerNotFound indicates that no handler is registered for the
	// concrete type of a dispatched request.
	ErrHandlerNotFound = errors.New("no handler registered for request type")

	// ErrHandlerAlreadyRegistered indicates a second handler registration for
	// a request type that already has one. Exactly one handler per request
	// type is an invariant of the engine.
	ErrHandlerAlreadyRegistered = errors.New("a handler is already registered for request type")

	// ErrNilRequest indicates that Send was called with a nil request.
	ErrNilRequest = errors.New("request must not be nil")

	// ErrNilHandler indicates a registration call with a nil handler.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrResponseTypeMismatch indicates that the response produced by the
	// registered handler does not match the response type the caller asked
	// Send for.
	ErrResponseTypeMismatch = errors.New("handler response does not match requested response type")

	// ErrNoUnitOfWorkFactory indicates that a transactional request or an
	// event notification was dispatched on a Dispatcher configured without a
	// unit-of-work factory.
	ErrNoUnitOfWorkFactory = errors.New("no unit of work factory configured")
)

// NotFoundError reports that a requested resource does not exist.
// It is an expected failure: logged at lower severity and never wrapped.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s was not found", e.Resource)
	}

	return fmt.Sprintf("%s (%s) was not found", e.Resource, e.Key)
}

// ConflictError reports that an operation conflicts with the current state of
// a resource. It is an expected failure.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ForbiddenError reports that the caller is not permitted to perform an
// operation. It is an expected failure.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "operation is forbidden"
	}

	return e.Message
}

// ValidationFailedError aggregates the field errors reported by all validators
// registered for a request type. It is raised by the validation behavior
// before the handler is reached and is an expected failure.
type ValidationFailedError struct {
	RequestType string
	Errors      []FieldError
}

func (e *ValidationFailedError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, fieldError := range e.Errors {
		messages = append(messages, fieldError.String())
	}

	return fmt.Sprintf("validation failed for %s: %s", e.RequestType, strings.Join(messages, "; "))
}

// ApplicationError wraps an unclassified failure with the name of the failing
// request or event. It is created exactly once, at the innermost pipeline
// stage that first observes the unexpected error; every further-out stage
// treats it as expected.
type ApplicationError struct {
	Name string
	Err  error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Name, e.Err.Error())
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// IsExpectedError reports whether err belongs to the engine's expected error
// taxonomy: NotFound, Conflict, Forbidden, ValidationFailed, HandlerNotFound,
// or an already-wrapped ApplicationError. Expected errors pass through every
// pipeline stage unchanged and are logged at lower severity.
func IsExpectedError(err error) bool {
	var (
		notFound         *NotFoundError
		conflict         *ConflictError
		forbidden        *ForbiddenError
		validationFailed *ValidationFailedError
		application      *ApplicationError
	)

	switch {
	case errors.As(err, &notFound),
		errors.As(err, &conflict),
		errors.As(err, &forbidden),
		errors.As(err, &validationFailed),
		errors.As(err, &application),
		errors.Is(err, ErrHandlerNotFound):
		return true
	default:
		return false
	}
}

// wrapUnexpected converts an unexpected error into an ApplicationError named
// after the failing request or event. Expected errors are returned unchanged.
func wrapUnexpected(name string, err error) error {
	if IsExpectedError(err) {
		return err
	}

	return &ApplicationError{Name: name, Err: err}
}
