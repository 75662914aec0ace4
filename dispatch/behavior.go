package dispatch

import (
	"context"
)

// Next invokes the remaining pipeline stages and ultimately the handler.
type Next func(ctx context.Context) (any, error)

// Behavior is one middleware unit of the dispatch pipeline. A behavior either
// calls next to continue the pipeline or short-circuits by returning without
// calling it (validation failure, authorization denial, ...).
//
// The built-in behaviors run first and therefore outermost, in this order:
// logging, validation, transaction. Behaviors appended with Dispatcher.Use
// run after them, closer to the handler.
type Behavior interface {
	Handle(ctx context.Context, request Request, next Next) (any, error)
}

// BehaviorFunc is a function adapter for Behavior.
type BehaviorFunc func(ctx context.Context, request Request, next Next) (any, error)

// Handle implements the Behavior interface.
func (f BehaviorFunc) Handle(ctx context.Context, request Request, next Next) (any, error) {
	return f(ctx, request, next)
}

// buildPipeline folds the ordered behavior list around the terminal handler
// invocation, innermost first, so that the first registered behavior ends up
// outermost. The pipeline is built fresh per dispatch from the
// currently-registered behaviors; only the resolved handler binding is
// cached, not the composed closure.
func buildPipeline(request Request, behaviors []Behavior, terminal Next) Next {
	invoke := terminal

	for i := len(behaviors) - 1; i >= 0; i-- {
		behavior := behaviors[i]
		next := invoke

		invoke = func(ctx context.Context) (any, error) {
			return behavior.Handle(ctx, request, next)
		}
	}

	return invoke
}
