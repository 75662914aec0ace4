package dispatch

import (
	"context"
	"time"
)

// Notify delivers the given domain events strictly in input order, one at a
// time. Each event gets its own isolated unit-of-work scope: begin, invoke
// every registered handler in registration order, save, commit, then drain
// and discard that scope's own pending events - events raised by event
// handlers are never recursively dispatched.
//
// If any handler fails, that scope is rolled back, its pending events are
// drained and discarded, the error propagates, and the remaining events of
// the batch are not processed.
func (d *Dispatcher) Notify(ctx context.Context, events DomainEvents) error {
	for _, event := range events {
		if err := d.notifyOne(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

// notifyOne delivers a single event inside a fresh unit-of-work scope.
func (d *Dispatcher) notifyOne(ctx context.Context, event DomainEvent) error {
	eventType := event.EventType()

	bindings := d.eventHandlersFor(event)
	if len(bindings) == 0 {
		// Zero handlers is a valid configuration; no scope is opened for it.
		d.logDebug(ctx, logMsgNoEventHandlers, logAttrEventType, eventType)
		return nil
	}

	if d.uowFactory == nil {
		return ErrNoUnitOfWorkFactory
	}

	spanCtx, span := d.startSpan(ctx, spanNameNotifyEvent, map[string]string{
		attrEventType: eventType,
	})

	start := time.Now()
	err := d.deliverInScope(spanCtx, event, bindings)
	duration := time.Since(start)

	if err != nil {
		d.recordDuration(spanCtx, metricNotifyDuration, duration, map[string]string{
			attrEventType: eventType,
			attrStatus:    statusError,
		})
		d.finishSpan(span, spanStatusFor(err), map[string]string{
			attrErrorType: classifyError(err),
		})
		d.logError(spanCtx, logMsgEventFailed, err,
			logAttrEventType, eventType,
			logAttrEventID, event.EventID().String(),
		)

		return wrapUnexpected(eventType, err)
	}

	d.recordDuration(spanCtx, metricNotifyDuration, duration, map[string]string{
		attrEventType: eventType,
		attrStatus:    statusSuccess,
	})
	d.incrementCounter(spanCtx, metricEventsDelivered, map[string]string{
		attrEventType: eventType,
	})
	d.finishSpan(span, statusSuccess, nil)
	d.logInfo(spanCtx, logMsgEventDelivered,
		logAttrEventType, eventType,
		logAttrEventID, event.EventID().String(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

// deliverInScope opens the isolated scope for one event and guarantees its
// release (commit or rollback) plus a pending-event drain on every exit path.
func (d *Dispatcher) deliverInScope(ctx context.Context, event DomainEvent, bindings []eventHandlerBinding) error {
	scopeCtx := ctx
	if d.propagator != nil {
		scopeCtx = d.propagator.Propagate(ctx)
	}

	uow, err := d.uowFactory.NewUnitOfWork(scopeCtx)
	if err != nil {
		return err
	}

	scopeCtx = ContextWithUnitOfWork(scopeCtx, uow)

	if err = uow.BeginTransaction(scopeCtx); err != nil {
		uow.GetAndClearPendingEvents()
		return err
	}

	d.logDebug(scopeCtx, logMsgDeliveringEvent,
		logAttrEventType, event.EventType(),
		logAttrEventID, event.EventID().String(),
	)

	for _, binding := range bindings {
		if err = binding.invoke(scopeCtx, event); err != nil {
			d.logWarn(scopeCtx, logMsgEventFailed,
				logAttrEventType, event.EventType(),
				"handler", binding.identity,
				logAttrError, err.Error(),
			)

			return d.abortScope(scopeCtx, uow, err)
		}
	}

	if err = uow.SaveChanges(scopeCtx); err != nil {
		return d.abortScope(scopeCtx, uow, err)
	}

	if err = uow.CommitTransaction(scopeCtx); err != nil {
		return d.abortScope(scopeCtx, uow, err)
	}

	// Events raised by the event handlers themselves are discarded:
	// notification does not recurse.
	uow.GetAndClearPendingEvents()

	return nil
}

// abortScope rolls the event scope back and drains its pending events before
// propagating the causing error.
func (d *Dispatcher) abortScope(ctx context.Context, uow UnitOfWork, cause error) error {
	if rollbackErr := uow.RollbackTransaction(ctx); rollbackErr != nil {
		d.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
	}

	uow.GetAndClearPendingEvents()

	return cause
}
