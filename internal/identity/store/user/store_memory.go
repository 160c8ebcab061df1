package user

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	"autoquote/pkg/platform/sentinel"
)

// InMemoryStore stores user profiles in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

// NewInMemory constructs an empty in-memory user store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *InMemoryStore) UpdateSubscriptionByEmail(_ context.Context, email string, update SubscriptionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			user.SubscriptionPlan = update.Plan
			user.SubscriptionStatus = update.Status
			if update.BillingCustomerID != "" {
				user.BillingCustomerID = update.BillingCustomerID
			}
			return nil
		}
	}
	return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// Verify interface is satisfied.
var _ Store = (*InMemoryStore)(nil)
