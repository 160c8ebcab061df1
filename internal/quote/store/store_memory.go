package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"autoquote/internal/quote/models"
	"autoquote/pkg/platform/sentinel"
)

// InMemoryStore keeps quotes in memory for tests/dev.
type InMemoryStore struct {
	mu           sync.RWMutex
	quotes       map[uuid.UUID]*models.Quote
	dealerQuotes map[uuid.UUID]*models.DealerQuote
	order        []uuid.UUID

	// failNext simulates an infrastructure failure on the next ListByUser.
	failNext error
}

// NewInMemory constructs an empty in-memory quote store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		quotes:       make(map[uuid.UUID]*models.Quote),
		dealerQuotes: make(map[uuid.UUID]*models.DealerQuote),
	}
}

// FailNext makes the next ListByUser return err once.
func (s *InMemoryStore) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *InMemoryStore) Create(_ context.Context, quote *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *quote
	s.quotes[quote.ID] = &copied
	s.order = append(s.order, quote.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.quotes[id]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", id, sentinel.ErrNotFound)
	}
	return s.assemble(stored), nil
}

// ListByUser returns the user's quotes in insertion order, deliberately NOT
// sorted: the ordering contract belongs to the service layer and tests rely
// on the store being order-naive.
func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Quote, error) {
	s.mu.Lock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Quote
	for _, id := range s.order {
		stored := s.quotes[id]
		if stored.UserID != userID {
			continue
		}
		out = append(out, s.assemble(stored))
	}
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.QuoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.quotes[id]
	if !ok {
		return fmt.Errorf("quote %s: %w", id, sentinel.ErrNotFound)
	}
	stored.Status = status
	return nil
}

func (s *InMemoryStore) AddDealerQuote(_ context.Context, dq *models.DealerQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotes[dq.QuoteID]; !ok {
		return fmt.Errorf("quote %s: %w", dq.QuoteID, sentinel.ErrNotFound)
	}
	copied := *dq
	s.dealerQuotes[dq.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindDealerQuote(_ context.Context, id uuid.UUID) (*models.DealerQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.dealerQuotes[id]
	if !ok {
		return nil, fmt.Errorf("dealer quote %s: %w", id, sentinel.ErrNotFound)
	}
	copied := *stored
	return &copied, nil
}

func (s *InMemoryStore) UpdateDealerQuote(_ context.Context, dq *models.DealerQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dealerQuotes[dq.ID]; !ok {
		return fmt.Errorf("dealer quote %s: %w", dq.ID, sentinel.ErrNotFound)
	}
	copied := *dq
	s.dealerQuotes[dq.ID] = &copied
	return nil
}

// assemble embeds dealer quotes under their parent. Caller holds the lock.
func (s *InMemoryStore) assemble(stored *models.Quote) *models.Quote {
	copied := *stored
	copied.DealerQuotes = nil
	for _, dq := range s.dealerQuotes {
		if dq.QuoteID == stored.ID {
			copied.DealerQuotes = append(copied.DealerQuotes, *dq)
		}
	}
	return &copied
}

// Verify interface is satisfied.
var _ Store = (*InMemoryStore)(nil)
