package dispatch

import (
	"context"
	"math"
	"time"
)

// Logger interface for operational logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting dispatch performance and
// operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware
// methods for better tracing integration. Implementations can use the context
// for trace correlation and span propagation. This interface is optional -
// the dispatcher uses the context-aware methods when available, falling back
// to the base MetricsCollector interface otherwise.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and
// updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information
// from dispatch operations. This interface follows the same dependency-free
// pattern as MetricsCollector, allowing integration with any tracing backend
// (OpenTelemetry, Jaeger, Zipkin, etc.) by implementing this interface.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation. When both a Logger and a ContextualLogger are configured, the
// dispatcher prefers the contextual one.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Metric names recorded by the dispatcher.
const (
	metricSendDuration    = "dispatch_send_duration_seconds"
	metricSendErrors      = "dispatch_send_errors_total"
	metricNotifyDuration  = "dispatch_notify_event_duration_seconds"
	metricEventsDelivered = "dispatch_events_delivered_total"
	metricEventsDiscarded = "dispatch_events_discarded_total"
)

// Span names and shared attribute keys.
const (
	spanNameSend        = "dispatch.send"
	spanNameNotifyEvent = "dispatch.notify_event"

	attrRequestType   = "request_type"
	attrEventType     = "event_type"
	attrErrorType     = "error_type"
	attrStatus        = "status"
	attrHandlerCount  = "handler_count"
	attrTransactional = "transactional"
)

// Status values for metrics labels and span statuses.
const (
	statusSuccess   = "success"
	statusError     = "error"
	statusCancelled = "cancelled"
)

// Log messages and attribute keys.
const (
	logMsgDispatching     = "dispatching request"
	logMsgDispatched      = "request dispatched"
	logMsgRequestFailed   = "request failed"
	logMsgRequestErrored  = "request errored unexpectedly"
	logMsgDeliveringEvent = "delivering domain event"
	logMsgEventDelivered  = "domain event delivered"
	logMsgEventFailed     = "domain event delivery failed"
	logMsgNoEventHandlers = "no handlers registered for domain event"
	logMsgRollbackFailed  = "transaction rollback failed"
	logMsgEventsDiscarded = "pending events discarded"

	logAttrRequestType = "request_type"
	logAttrEventType   = "event_type"
	logAttrEventID     = "event_id"
	logAttrDurationMS  = "duration_ms"
	logAttrError       = "error"
	logAttrEventCount  = "event_count"
)

// logDebug logs debug information if a logger is configured, preferring the
// contextual logger.
func (d *Dispatcher) logDebug(ctx context.Context, msg string, args ...any) {
	if d.contextualLogger != nil {
		d.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

// logInfo logs operational information if a logger is configured.
func (d *Dispatcher) logInfo(ctx context.Context, msg string, args ...any) {
	if d.contextualLogger != nil {
		d.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

// logWarn logs non-critical issues if a logger is configured.
func (d *Dispatcher) logWarn(ctx context.Context, msg string, args ...any) {
	if d.contextualLogger != nil {
		d.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}

// logError logs critical failures if a logger is configured.
func (d *Dispatcher) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if d.contextualLogger != nil {
		d.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if d.logger != nil {
		d.logger.Error(msg, allArgs...)
	}
}

// recordDuration records a duration metric if a collector is configured,
// using the context-aware method when the collector supports it.
func (d *Dispatcher) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if d.metricsCollector == nil {
		return
	}

	if contextual, ok := d.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	d.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounter increments a counter metric if a collector is configured.
func (d *Dispatcher) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if d.metricsCollector == nil {
		return
	}

	if contextual, ok := d.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	d.metricsCollector.IncrementCounter(metric, labels)
}

// startSpan starts a tracing span if a tracing collector is configured.
// It returns a nil SpanContext otherwise; finishSpan tolerates that.
func (d *Dispatcher) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if d.tracingCollector == nil {
		return ctx, nil
	}

	return d.tracingCollector.StartSpan(ctx, name, attrs)
}

// finishSpan finishes a tracing span started with startSpan.
func (d *Dispatcher) finishSpan(spanCtx SpanContext, status string, attrs map[string]string) {
	if d.tracingCollector == nil || spanCtx == nil {
		return
	}

	d.tracingCollector.FinishSpan(spanCtx, status, attrs)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(duration time.Duration) float64 {
	return math.Round(float64(duration.Nanoseconds())/1e6*1000) / 1000
}
