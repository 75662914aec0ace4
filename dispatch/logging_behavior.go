package dispatch

import (
	"context"
	"errors"
	"time"
)

// loggingBehavior is the outermost built-in behavior. It observes start, end,
// and duration of every dispatch and classifies failures: expected failures
// are logged at warning level and rethrown unchanged, anything else is logged
// at error level and converted once into an ApplicationError that preserves
// the original as its cause. It never swallows an error.
type loggingBehavior struct {
	d *Dispatcher
}

func (b *loggingBehavior) Handle(ctx context.Context, request Request, next Next) (any, error) {
	requestType := requestTypeName(request)

	spanCtx, span := b.d.startSpan(ctx, spanNameSend, map[string]string{
		attrRequestType: requestType,
	})

	b.d.logDebug(spanCtx, logMsgDispatching, logAttrRequestType, requestType)

	start := time.Now()
	result, err := next(spanCtx)
	duration := time.Since(start)

	if err == nil {
		b.d.logInfo(spanCtx, logMsgDispatched,
			logAttrRequestType, requestType,
			logAttrDurationMS, toMilliseconds(duration),
		)
		b.d.recordDuration(spanCtx, metricSendDuration, duration, map[string]string{
			attrRequestType: requestType,
			attrStatus:      statusSuccess,
		})
		b.d.finishSpan(span, statusSuccess, nil)

		return result, nil
	}

	b.d.recordDuration(spanCtx, metricSendDuration, duration, map[string]string{
		attrRequestType: requestType,
		attrStatus:      statusError,
	})
	b.d.incrementCounter(spanCtx, metricSendErrors, map[string]string{
		attrRequestType: requestType,
		attrErrorType:   classifyError(err),
	})
	b.d.finishSpan(span, spanStatusFor(err), map[string]string{
		attrErrorType: classifyError(err),
	})

	if IsExpectedError(err) {
		b.d.logWarn(spanCtx, logMsgRequestFailed,
			logAttrRequestType, requestType,
			logAttrDurationMS, toMilliseconds(duration),
			logAttrError, err.Error(),
		)

		return nil, err
	}

	b.d.logError(spanCtx, logMsgRequestErrored, err,
		logAttrRequestType, requestType,
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil, wrapUnexpected(requestType, err)
}

// classifyError maps an error to a low-cardinality label value for metrics.
func classifyError(err error) string {
	var (
		notFound         *NotFoundError
		conflict         *ConflictError
		forbidden        *ForbiddenError
		validationFailed *ValidationFailedError
		application      *ApplicationError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	case errors.Is(err, ErrHandlerNotFound):
		return "handler_not_found"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &forbidden):
		return "forbidden"
	case errors.As(err, &validationFailed):
		return "validation_failed"
	case errors.As(err, &application):
		return "application_failure"
	default:
		return "other"
	}
}

// spanStatusFor maps an error to a span status string.
func spanStatusFor(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return statusCancelled
	}

	return statusError
}
