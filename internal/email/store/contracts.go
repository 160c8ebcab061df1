// Package store persists scheduled emails awaiting delivery.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/email/models"
)

// Store defines scheduled-email persistence.
// Error Contract: ListDue returns pending records whose scheduled time is at
// or before now, oldest first; MarkSent and MarkFailed return
// sentinel.ErrNotFound (wrapped) for unknown ids.
type Store interface {
	Create(ctx context.Context, email *models.ScheduledEmail) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledEmail, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}
