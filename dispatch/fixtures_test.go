package dispatch_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
	"github.com/mediatorkit/transactional-dispatch-go/dispatch/memoryengine"
)

// greetReader is a non-transactional query.
type greetReader struct {
	Name string
}

func (greetReader) RequestType() string { return "GreetReader" }

// registerReader is a command: always transactional.
type registerReader struct {
	dispatch.CommandBase
	ReaderID uuid.UUID
	Name     string
}

func (registerReader) RequestType() string { return "RegisterReader" }

// auditedLookup is a query explicitly marked transactional.
type auditedLookup struct {
	ReaderID uuid.UUID
}

func (auditedLookup) RequestType() string       { return "AuditedLookup" }
func (auditedLookup) RequiresTransaction() bool { return true }

// readerRegistered is the domain event raised by registerReader handlers.
type readerRegistered struct {
	ID       uuid.UUID
	ReaderID uuid.UUID
	At       time.Time
}

func (e readerRegistered) EventID() uuid.UUID       { return e.ID }
func (e readerRegistered) EventType() string        { return "ReaderRegistered" }
func (e readerRegistered) HasOccurredAt() time.Time { return e.At }

func buildReaderRegistered(readerID uuid.UUID) readerRegistered {
	return readerRegistered{
		ID:       uuid.New(),
		ReaderID: readerID,
		At:       time.Unix(0, 0).UTC(),
	}
}

// callRecorder collects observable markers across behaviors, handlers, and
// event handlers, in invocation order.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(marker string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, marker)
}

func (r *callRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]string, len(r.calls))
	copy(snapshot, r.calls)

	return snapshot
}

// markerBehavior records pre/post markers around the next stage.
type markerBehavior struct {
	name     string
	recorder *callRecorder
}

func (b *markerBehavior) Handle(ctx context.Context, _ dispatch.Request, next dispatch.Next) (any, error) {
	b.recorder.record(b.name + "-pre")

	result, err := next(ctx)

	b.recorder.record(b.name + "-post")

	return result, err
}

// Test helper functions

func newDispatcherWithFactory(t interface{ Fatalf(string, ...any) }, factoryOptions ...memoryengine.FactoryOption) (*dispatch.Dispatcher, *memoryengine.Factory) {
	factory := memoryengine.NewFactory(factoryOptions...)

	d, err := dispatch.NewDispatcher(dispatch.WithUnitOfWorkFactory(factory))
	if err != nil {
		t.Fatalf("building dispatcher: %v", err)
	}

	return d, factory
}
