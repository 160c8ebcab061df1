package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"autoquote/internal/coupon/models"
	"autoquote/pkg/platform/sentinel"
)

// InMemoryStore keeps coupons in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	coupons []*models.Coupon
}

// NewInMemory constructs an empty in-memory coupon store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, coupon *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.coupons {
		if strings.EqualFold(existing.Code, coupon.Code) {
			return fmt.Errorf("coupon code taken: %w", sentinel.ErrAlreadyUsed)
		}
	}
	copied := *coupon
	s.coupons = append(s.coupons, &copied)
	return nil
}

func (s *InMemoryStore) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, existing := range s.coupons {
		if strings.EqualFold(existing.Code, code) {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("coupon not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Coupon, 0, len(s.coupons))
	for _, existing := range s.coupons {
		copied := *existing
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Verify interface is satisfied.
var _ Store = (*InMemoryStore)(nil)
