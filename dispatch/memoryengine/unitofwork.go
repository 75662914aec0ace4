package memoryengine

import (
	"context"
	"errors"
	"sync"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
)

var (
	// ErrTransactionNotStarted indicates an operation that requires an open
	// transaction while the unit of work is still in its initial state.
	ErrTransactionNotStarted = errors.New("transaction has not been started")

	// ErrTransactionAlreadyStarted indicates a second BeginTransaction call on
	// the same unit of work.
	ErrTransactionAlreadyStarted = errors.New("transaction has already been started")

	// ErrTransactionFinished indicates an operation on a unit of work whose
	// transaction was already committed or rolled back.
	ErrTransactionFinished = errors.New("transaction has already finished")

	// ErrNoUnitOfWorkInContext indicates that RecordEvent was called outside a
	// transactional dispatch scope.
	ErrNoUnitOfWorkInContext = errors.New("no unit of work in context")

	// ErrForeignUnitOfWork indicates that the unit of work in the context was
	// not created by this engine.
	ErrForeignUnitOfWork = errors.New("unit of work in context is not a memoryengine unit of work")
)

// txState models the transaction lifecycle of one unit of work.
type txState int

const (
	stateNotStarted txState = iota
	stateInTransaction
	stateCommitted
	stateRolledBack
)

// UnitOfWork is an in-memory transactional collaborator. It owns its
// pending-event queue and enforces the transaction state machine; invalid
// transitions fail with the sentinel errors above.
type UnitOfWork struct {
	mu      sync.Mutex
	state   txState
	pending dispatch.DomainEvents
	calls   Calls

	failBegin  error
	failSave   error
	failCommit error
}

// Calls counts the lifecycle operations performed on a unit of work, in
// support of assertions in tests.
type Calls struct {
	Begins    int
	Saves     int
	Commits   int
	Rollbacks int
	Drains    int
}

// BeginTransaction opens the transaction. It fails when the unit of work has
// already been used.
func (u *UnitOfWork) BeginTransaction(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls.Begins++

	switch u.state {
	case stateInTransaction:
		return ErrTransactionAlreadyStarted
	case stateCommitted, stateRolledBack:
		return ErrTransactionFinished
	case stateNotStarted:
	}

	if u.failBegin != nil {
		return u.failBegin
	}

	u.state = stateInTransaction

	return nil
}

// SaveChanges is a no-op persistence step that still validates the state
// machine, so tests observe the same call ordering a real engine would.
func (u *UnitOfWork) SaveChanges(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls.Saves++

	if err := u.requireInTransaction(); err != nil {
		return err
	}

	return u.failSave
}

// CommitTransaction commits the open transaction.
func (u *UnitOfWork) CommitTransaction(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls.Commits++

	if err := u.requireInTransaction(); err != nil {
		return err
	}

	if u.failCommit != nil {
		return u.failCommit
	}

	u.state = stateCommitted

	return nil
}

// RollbackTransaction rolls the open transaction back.
func (u *UnitOfWork) RollbackTransaction(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls.Rollbacks++

	if err := u.requireInTransaction(); err != nil {
		return err
	}

	u.state = stateRolledBack

	return nil
}

// GetAndClearPendingEvents atomically snapshots and empties the pending-event
// queue.
func (u *UnitOfWork) GetAndClearPendingEvents() dispatch.DomainEvents {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls.Drains++

	drained := u.pending
	u.pending = nil

	return drained
}

// RecordEvent appends a domain event to the pending queue. Domain code calls
// this while the command's transaction is open.
func (u *UnitOfWork) RecordEvent(event dispatch.DomainEvent) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending = append(u.pending, event)
}

// Calls returns a snapshot of the lifecycle call counts.
func (u *UnitOfWork) Calls() Calls {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.calls
}

// Committed reports whether the transaction was committed.
func (u *UnitOfWork) Committed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.state == stateCommitted
}

// RolledBack reports whether the transaction was rolled back.
func (u *UnitOfWork) RolledBack() bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.state == stateRolledBack
}

// requireInTransaction validates that the transaction is open. Callers hold u.mu.
func (u *UnitOfWork) requireInTransaction() error {
	switch u.state {
	case stateNotStarted:
		return ErrTransactionNotStarted
	case stateCommitted, stateRolledBack:
		return ErrTransactionFinished
	case stateInTransaction:
	}

	return nil
}

// FactoryOption defines a functional option for configuring a Factory.
type FactoryOption func(*Factory)

// WithFailingBegin makes every created unit of work fail BeginTransaction
// with the given error.
func WithFailingBegin(err error) FactoryOption {
	return func(f *Factory) {
		f.failBegin = err
	}
}

// WithFailingSave makes every created unit of work fail SaveChanges with the
// given error.
func WithFailingSave(err error) FactoryOption {
	return func(f *Factory) {
		f.failSave = err
	}
}

// WithFailingCommit makes every created unit of work fail CommitTransaction
// with the given error.
func WithFailingCommit(err error) FactoryOption {
	return func(f *Factory) {
		f.failCommit = err
	}
}

// Factory creates one fresh in-memory UnitOfWork per scope and remembers
// every instance it handed out, so tests can inspect each scope afterwards.
type Factory struct {
	mu      sync.Mutex
	created []*UnitOfWork

	failBegin  error
	failSave   error
	failCommit error
}

// NewFactory creates a Factory with the given options.
func NewFactory(options ...FactoryOption) *Factory {
	f := &Factory{}

	for _, option := range options {
		option(f)
	}

	return f
}

// NewUnitOfWork implements dispatch.UnitOfWorkFactory.
func (f *Factory) NewUnitOfWork(_ context.Context) (dispatch.UnitOfWork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uow := &UnitOfWork{
		failBegin:  f.failBegin,
		failSave:   f.failSave,
		failCommit: f.failCommit,
	}
	f.created = append(f.created, uow)

	return uow, nil
}

// Created returns every unit of work this factory has handed out, in creation
// order.
func (f *Factory) Created() []*UnitOfWork {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make([]*UnitOfWork, len(f.created))
	copy(snapshot, f.created)

	return snapshot
}

// RecordEvent appends a domain event to the pending queue of the unit of work
// carried by the given dispatch context. It is the bridge domain code uses to
// raise events from inside a command handler.
func RecordEvent(ctx context.Context, event dispatch.DomainEvent) error {
	uow, ok := dispatch.UnitOfWorkFromContext(ctx)
	if !ok {
		return ErrNoUnitOfWorkInContext
	}

	memoryUow, ok := uow.(*UnitOfWork)
	if !ok {
		return ErrForeignUnitOfWork
	}

	memoryUow.RecordEvent(event)

	return nil
}

// Ensure the engine satisfies the dispatch contracts.
var (
	_ dispatch.UnitOfWork        = (*UnitOfWork)(nil)
	_ dispatch.UnitOfWorkFactory = (*Factory)(nil)
)
