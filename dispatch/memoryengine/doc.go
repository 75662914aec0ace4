// Package memoryengine provides in-memory implementations of the dispatch
// unit-of-work and idempotency-store contracts.
//
// The unit of work enforces the strict transaction state machine
// NotStarted -> InTransaction -> {Committed, RolledBack} and keeps a call
// journal, which makes the package the natural backend for tests and demos.
// It is not meant for production use: nothing is durable and commit/rollback
// only flip state.
package memoryengine
