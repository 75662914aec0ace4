package dispatch

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvents is an alias type for a slice of DomainEvent.
type DomainEvents = []DomainEvent

// DomainEvent represents a business fact raised by domain logic during a
// command. Events are held by the unit of work that owns the command's
// transaction and delivered after a successful commit.
type DomainEvent interface {
	// EventID returns the stable identity of this event instance.
	// The idempotency guard keys its processed-records on it.
	EventID() uuid.UUID

	// EventType returns the string discriminator for this event type.
	EventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time
}
