package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	"autoquote/pkg/platform/sentinel"
)

// ErrSessionRevoked signals a revocation attempt against an already revoked session.
var ErrSessionRevoked = fmt.Errorf("session has been revoked: %w", sentinel.ErrInvalidState)

// Store defines the persistence interface for sessions.
// Error Contract: FindByID returns sentinel.ErrNotFound (wrapped) when the
// session does not exist.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	Revoke(ctx context.Context, sessionID uuid.UUID, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
