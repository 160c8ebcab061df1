package role

import (
	"context"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
)

// Store defines the persistence interface for explicit role assignments.
// Error Contract: FindByUser returns sentinel.ErrNotFound (wrapped) when no
// role row exists for the user. Callers must treat that as "no explicit role
// assigned", never as a failure.
type Store interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (models.Role, error)
	Assign(ctx context.Context, userID uuid.UUID, role models.Role) error
}
