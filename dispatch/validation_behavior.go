package dispatch

import (
	"context"
)

// validationBehavior gathers all validators registered for the request type,
// invokes each in registration order, and concatenates their reported field
// errors preserving validator-then-error order. A non-empty aggregate fails
// the request with ValidationFailedError without invoking the next stage.
// With zero registered validators the behavior passes through immediately
// without allocating.
type validationBehavior struct {
	d *Dispatcher
}

func (b *validationBehavior) Handle(ctx context.Context, request Request, next Next) (any, error) {
	validators := b.d.validatorsFor(request)
	if len(validators) == 0 {
		return next(ctx)
	}

	var collected []FieldError

	for _, validate := range validators {
		fieldErrors, err := validate(ctx, request)
		if err != nil {
			// Infrastructure failure inside a validator, not a finding.
			return nil, err
		}

		collected = append(collected, fieldErrors...)
	}

	if len(collected) > 0 {
		return nil, &ValidationFailedError{
			RequestType: requestTypeName(request),
			Errors:      collected,
		}
	}

	return next(ctx)
}
