package placeorder

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
)

const maxQuantityPerOrder = 1000

// Validator checks the structural validity of a PlaceOrder command before the
// handler runs. Business rules that need state, like duplicate detection, stay
// in the handler.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() Validator {
	return Validator{}
}

// Validate implements dispatch.Validator.
func (v Validator) Validate(_ context.Context, command Command) ([]dispatch.FieldError, error) {
	var fieldErrors []dispatch.FieldError

	if command.OrderID == uuid.Nil {
		fieldErrors = append(fieldErrors, dispatch.FieldError{
			Property: "OrderID",
			Message:  "must not be empty",
			Code:     "required",
		})
	}

	if command.CustomerID == uuid.Nil {
		fieldErrors = append(fieldErrors, dispatch.FieldError{
			Property: "CustomerID",
			Message:  "must not be empty",
			Code:     "required",
		})
	}

	if command.SKU == "" {
		fieldErrors = append(fieldErrors, dispatch.FieldError{
			Property: "SKU",
			Message:  "must not be empty",
			Code:     "required",
		})
	}

	if command.Quantity <= 0 {
		fieldErrors = append(fieldErrors, dispatch.FieldError{
			Property: "Quantity",
			Message:  "must be positive",
			Code:     "out_of_range",
		})
	} else if command.Quantity > maxQuantityPerOrder {
		fieldErrors = append(fieldErrors, dispatch.FieldError{
			Property: "Quantity",
			Message:  "exceeds the maximum quantity per order",
			Code:     "out_of_range",
		})
	}

	return fieldErrors, nil
}
