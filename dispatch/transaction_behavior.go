package dispatch

import (
	"context"
)

// transactionBehavior owns the transactional lifecycle of mutating requests:
//
//	begin -> handler -> save -> commit -> drain pending events -> notify
//
// Non-transactional requests pass through untouched. On any failure between
// begin and commit the transaction is rolled back and the pending-event queue
// is drained and discarded, so a retried command does not redeliver stale
// events and nothing leaks into a later request sharing the same factory.
//
// Post-commit event delivery happens synchronously via Dispatcher.Notify. A
// notification failure propagates to the request's caller even though the
// transaction already committed; callers must be aware the state change is
// durable despite the reported error.
type transactionBehavior struct {
	d *Dispatcher
}

func (b *transactionBehavior) Handle(ctx context.Context, request Request, next Next) (any, error) {
	if !requiresTransaction(request) {
		return next(ctx)
	}

	if b.d.uowFactory == nil {
		return nil, ErrNoUnitOfWorkFactory
	}

	requestType := requestTypeName(request)

	uow, err := b.d.uowFactory.NewUnitOfWork(ctx)
	if err != nil {
		return nil, wrapUnexpected(requestType, err)
	}

	ctx = ContextWithUnitOfWork(ctx, uow)

	if err = uow.BeginTransaction(ctx); err != nil {
		b.discardPendingEvents(ctx, uow, requestType)
		return nil, wrapUnexpected(requestType, err)
	}

	result, err := next(ctx)
	if err != nil {
		return nil, b.rollbackAndDrain(ctx, uow, requestType, err)
	}

	if err = uow.SaveChanges(ctx); err != nil {
		return nil, b.rollbackAndDrain(ctx, uow, requestType, err)
	}

	if err = uow.CommitTransaction(ctx); err != nil {
		return nil, b.rollbackAndDrain(ctx, uow, requestType, err)
	}

	pendingEvents := uow.GetAndClearPendingEvents()
	if len(pendingEvents) > 0 {
		if err = b.d.Notify(ctx, pendingEvents); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// rollbackAndDrain rolls the transaction back, discards the pending-event
// queue, and classifies the causing error: an already-expected failure is
// returned unchanged, anything else is wrapped into an ApplicationError named
// after the request type.
func (b *transactionBehavior) rollbackAndDrain(ctx context.Context, uow UnitOfWork, requestType string, cause error) error {
	if rollbackErr := uow.RollbackTransaction(ctx); rollbackErr != nil {
		b.d.logWarn(ctx, logMsgRollbackFailed,
			logAttrRequestType, requestType,
			logAttrError, rollbackErr.Error(),
		)
	}

	b.discardPendingEvents(ctx, uow, requestType)

	return wrapUnexpected(requestType, cause)
}

// discardPendingEvents drains the queue so stale events cannot survive the
// scope that raised them.
func (b *transactionBehavior) discardPendingEvents(ctx context.Context, uow UnitOfWork, requestType string) {
	discarded := uow.GetAndClearPendingEvents()
	if len(discarded) == 0 {
		return
	}

	b.d.logDebug(ctx, logMsgEventsDiscarded,
		logAttrRequestType, requestType,
		logAttrEventCount, len(discarded),
	)
	b.d.incrementCounter(ctx, metricEventsDiscarded, map[string]string{
		attrRequestType: requestType,
	})
}
