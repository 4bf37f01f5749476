package chat

import (
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeThread = "ChatThread"

// Event type constants
const (
	EventTypeThreadHijacked = "ChatThreadHijacked"
)

// ThreadHijackedEvent is raised when support takes over a conversation
type ThreadHijackedEvent struct {
	shared.BaseDomainEvent
	ThreadID      uuid.UUID `json:"thread_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	CounterpartID uuid.UUID `json:"counterpart_id"`
	AdminID       uuid.UUID `json:"admin_id"`
}

// NewThreadHijackedEvent creates a new ThreadHijackedEvent
func NewThreadHijackedEvent(t *Thread, adminID uuid.UUID) *ThreadHijackedEvent {
	return &ThreadHijackedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeThreadHijacked, AggregateTypeThread, t.ID),
		ThreadID:        t.ID,
		CustomerID:      t.CustomerID,
		CounterpartID:   t.CounterpartID,
		AdminID:         adminID,
	}
}

// EventType returns the event type name
func (e *ThreadHijackedEvent) EventType() string {
	return EventTypeThreadHijacked
}
