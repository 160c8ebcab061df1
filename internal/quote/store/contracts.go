// Package store persists quotes and their dealer responses.
package store

import (
	"context"

	"github.com/google/uuid"

	"autoquote/internal/quote/models"
)

// Store defines quote persistence.
// Error Contract: FindByID and FindDealerQuote return sentinel.ErrNotFound
// (wrapped) when the row does not exist.
//
// ListByUser returns quotes with dealer responses and dealer display names
// embedded. Rows come back in whatever order the backing query produced;
// the service layer owns the newest-first ordering contract.
type Store interface {
	Create(ctx context.Context, quote *models.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.QuoteStatus) error

	AddDealerQuote(ctx context.Context, dq *models.DealerQuote) error
	FindDealerQuote(ctx context.Context, id uuid.UUID) (*models.DealerQuote, error)
	UpdateDealerQuote(ctx context.Context, dq *models.DealerQuote) error
}
