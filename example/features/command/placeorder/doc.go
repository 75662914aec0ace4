// Package placeorder implements the Place Order use case.
//
// The command handler persists the new order inside the dispatch scope's
// transaction and raises OrderPlaced into the scope's pending-event queue, so
// the order row and the event become durable atomically. Structural validation
// runs in the validation stage of the pipeline, before the handler is reached.
package placeorder
