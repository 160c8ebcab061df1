// Package store persists coupons.
package store

import (
	"context"

	"autoquote/internal/coupon/models"
)

// Store defines coupon persistence.
// Error Contract: Create returns sentinel.ErrAlreadyUsed (wrapped) on a
// duplicate code. List returns coupons ordered by creation time descending.
type Store interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]*models.Coupon, error)
}
