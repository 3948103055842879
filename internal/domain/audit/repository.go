package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages the queryable audit trail projection
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetByActorID(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*Event, error)
	CountByActorID(ctx context.Context, actorID uuid.UUID) (int64, error)
}

// ErrEventNotFound indicates missing audit event
type ErrEventNotFound struct {
	ID uuid.UUID
}

func (e ErrEventNotFound) Error() string {
	return "audit event not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrEventNotFound
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
