package memoryengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/memoryengine"
)

type stubEvent struct {
	id uuid.UUID
}

func (e stubEvent) EventID() uuid.UUID       { return e.id }
func (e stubEvent) EventType() string        { return "StubEvent" }
func (e stubEvent) HasOccurredAt() time.Time { return time.Unix(0, 0).UTC() }

func Test_UnitOfWork_LifecycleHappyPath(t *testing.T) {
	// setup
	factory := memoryengine.NewFactory()
	uow, err := factory.NewUnitOfWork(context.Background())
	require.NoError(t, err)

	// act + assert
	require.NoError(t, uow.BeginTransaction(context.Background()))
	require.NoError(t, uow.SaveChanges(context.Background()))
	require.NoError(t, uow.CommitTransaction(context.Background()))

	memoryUow := uow.(*memoryengine.UnitOfWork)
	assert.True(t, memoryUow.Committed())
	assert.Equal(t, 1, memoryUow.Calls().Begins)
	assert.Equal(t, 1, memoryUow.Calls().Saves)
	assert.Equal(t, 1, memoryUow.Calls().Commits)
}

func Test_UnitOfWork_DoubleBegin_Fails(t *testing.T) {
	// setup
	uow := newUnitOfWork(t)
	require.NoError(t, uow.BeginTransaction(context.Background()))

	// act
	err := uow.BeginTransaction(context.Background())

	// assert
	assert.ErrorIs(t, err, memoryengine.ErrTransactionAlreadyStarted)
}

func Test_UnitOfWork_SaveWithoutBegin_Fails(t *testing.T) {
	uow := newUnitOfWork(t)

	err := uow.SaveChanges(context.Background())

	assert.ErrorIs(t, err, memoryengine.ErrTransactionNotStarted)
}

func Test_UnitOfWork_CommitWithoutBegin_Fails(t *testing.T) {
	uow := newUnitOfWork(t)

	err := uow.CommitTransaction(context.Background())

	assert.ErrorIs(t, err, memoryengine.ErrTransactionNotStarted)
}

func Test_UnitOfWork_OperationsAfterCommit_Fail(t *testing.T) {
	// setup
	uow := newUnitOfWork(t)
	require.NoError(t, uow.BeginTransaction(context.Background()))
	require.NoError(t, uow.CommitTransaction(context.Background()))

	// act + assert
	assert.ErrorIs(t, uow.BeginTransaction(context.Background()), memoryengine.ErrTransactionFinished)
	assert.ErrorIs(t, uow.SaveChanges(context.Background()), memoryengine.ErrTransactionFinished)
	assert.ErrorIs(t, uow.RollbackTransaction(context.Background()), memoryengine.ErrTransactionFinished)
}

func Test_UnitOfWork_DrainReturnsEventsOnceInOrder(t *testing.T) {
	// setup
	uow := newUnitOfWork(t)

	first := stubEvent{id: uuid.New()}
	second := stubEvent{id: uuid.New()}
	uow.RecordEvent(first)
	uow.RecordEvent(second)

	// act
	drained := uow.GetAndClearPendingEvents()

	// assert
	require.Len(t, drained, 2)
	assert.Equal(t, first.id, drained[0].EventID())
	assert.Equal(t, second.id, drained[1].EventID())
	assert.Empty(t, uow.GetAndClearPendingEvents(), "a second drain must be empty")
}

func Test_RecordEvent_OutsideDispatchScope_Fails(t *testing.T) {
	err := memoryengine.RecordEvent(context.Background(), stubEvent{id: uuid.New()})

	assert.ErrorIs(t, err, memoryengine.ErrNoUnitOfWorkInContext)
}

func Test_RecordEvent_InsideDispatchScope_AppendsToPendingQueue(t *testing.T) {
	// setup
	uow := newUnitOfWork(t)
	ctx := dispatch.ContextWithUnitOfWork(context.Background(), uow)

	event := stubEvent{id: uuid.New()}

	// act
	err := memoryengine.RecordEvent(ctx, event)

	// assert
	require.NoError(t, err)
	drained := uow.GetAndClearPendingEvents()
	require.Len(t, drained, 1)
	assert.Equal(t, event.id, drained[0].EventID())
}

func Test_Factory_InjectedFailuresApplyToEveryUnitOfWork(t *testing.T) {
	// setup
	beginErr := assert.AnError
	factory := memoryengine.NewFactory(memoryengine.WithFailingBegin(beginErr))

	uow, err := factory.NewUnitOfWork(context.Background())
	require.NoError(t, err)

	// act + assert
	assert.ErrorIs(t, uow.BeginTransaction(context.Background()), beginErr)
}

func newUnitOfWork(t *testing.T) *memoryengine.UnitOfWork {
	t.Helper()

	uow, err := memoryengine.NewFactory().NewUnitOfWork(context.Background())
	require.NoError(t, err)

	return uow.(*memoryengine.UnitOfWork)
}
