package user

import (
	"context"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
)

// SubscriptionUpdate carries the billing fields written by the payment
// webhook flow.
type SubscriptionUpdate struct {
	Plan              string
	Status            string
	BillingCustomerID string
}

// Store defines the persistence interface for user profiles.
// Error Contract: Find methods return sentinel.ErrNotFound (wrapped) when the
// profile does not exist.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// UpdateSubscriptionByEmail updates the subscription fields of the
	// profile matching the billing customer email.
	UpdateSubscriptionByEmail(ctx context.Context, email string, update SubscriptionUpdate) error
}
