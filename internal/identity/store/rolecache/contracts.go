// Package rolecache stores resolved role lookups for a bounded freshness
// window. The cache is keyed per user, so a stale in-flight resolution for a
// superseded user never lands in another user's slot.
package rolecache

import (
	"context"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
)

// Entry is the cached portion of a resolution: the persisted role and
// profile, before any view-mode override is applied.
type Entry struct {
	Role models.Role
	User *models.User
}

// Cache defines the role-resolution cache contract. Implementations must
// treat all failures as cache misses; the resolver never fails because the
// cache is down.
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (*Entry, bool)
	Set(ctx context.Context, userID uuid.UUID, entry *Entry)
	Invalidate(ctx context.Context, userID uuid.UUID)
}
