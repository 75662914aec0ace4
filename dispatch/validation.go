package dispatch

import (
	"context"
	"fmt"
)

// FieldError is a single validation finding reported by a validator.
// It is a plain value: aggregated across validators, never partially applied.
type FieldError struct {
	// Property is the name of the offending property; empty means the error
	// spans multiple fields.
	Property string

	// Message is the human-readable description of the finding.
	Message string

	// Code is an optional machine-readable error code.
	Code string
}

// String renders the field error for log output and error messages.
func (e FieldError) String() string {
	switch {
	case e.Property == "" && e.Code == "":
		return e.Message
	case e.Property == "":
		return fmt.Sprintf("%s [%s]", e.Message, e.Code)
	case e.Code == "":
		return fmt.Sprintf("%s: %s", e.Property, e.Message)
	default:
		return fmt.Sprintf("%s: %s [%s]", e.Property, e.Message, e.Code)
	}
}

// Validator inspects a request of type T before its handler runs. Validators
// may perform external checks and therefore receive the dispatch context.
// Returning field errors fails the request with ValidationFailedError; a
// non-nil error aborts validation with an infrastructure failure instead.
type Validator[T Request] interface {
	Validate(ctx context.Context, request T) ([]FieldError, error)
}

// ValidatorFunc is a function adapter for Validator.
type ValidatorFunc[T Request] func(ctx context.Context, request T) ([]FieldError, error)

// Validate implements the Validator interface.
func (f ValidatorFunc[T]) Validate(ctx context.Context, request T) ([]FieldError, error) {
	return f(ctx, request)
}

// boundValidator is a type-erased validator invocation captured at
// registration time, keyed by the concrete request type.
type boundValidator func(ctx context.Context, request Request) ([]FieldError, error)
