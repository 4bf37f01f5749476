package chat

import (
	"context"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ThreadRepository defines the interface for chat persistence
type ThreadRepository interface {
	// FindByID finds a thread with its messages
	FindByID(ctx context.Context, id uuid.UUID) (*Thread, error)

	// FindByKey finds a thread by its synthesized key
	FindByKey(ctx context.Context, threadKey string) (*Thread, error)

	// FindForUser finds threads the user participates in
	FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Thread, error)

	// FindHijacked finds threads currently routed to the admin console
	FindHijacked(ctx context.Context, filter shared.Filter) ([]Thread, error)

	// Save creates or updates a thread and appends new messages
	Save(ctx context.Context, t *Thread) error

	// FindMessages returns a page of messages for a thread, oldest first
	FindMessages(ctx context.Context, threadID uuid.UUID, filter shared.Filter) ([]Message, error)
}
