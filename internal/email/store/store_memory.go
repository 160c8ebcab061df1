package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/email/models"
	"autoquote/pkg/platform/sentinel"
)

// InMemoryStore keeps scheduled emails in memory for tests/dev.
type InMemoryStore struct {
	mu     sync.RWMutex
	emails map[uuid.UUID]*models.ScheduledEmail
}

// NewInMemory constructs an empty in-memory scheduled-email store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{emails: make(map[uuid.UUID]*models.ScheduledEmail)}
}

func (s *InMemoryStore) Create(_ context.Context, email *models.ScheduledEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *email
	s.emails[email.ID] = &copied
	return nil
}

func (s *InMemoryStore) ListDue(_ context.Context, now time.Time, limit int) ([]*models.ScheduledEmail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var due []*models.ScheduledEmail
	for _, email := range s.emails {
		if email.Status != models.ScheduledStatusPending {
			continue
		}
		if email.ScheduledFor.After(now) {
			continue
		}
		copied := *email
		due = append(due, &copied)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *InMemoryStore) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.emails[id]
	if !ok {
		return fmt.Errorf("scheduled email %s: %w", id, sentinel.ErrNotFound)
	}
	stored.Status = models.ScheduledStatusSent
	stored.SentAt = &sentAt
	return nil
}

func (s *InMemoryStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.emails[id]
	if !ok {
		return fmt.Errorf("scheduled email %s: %w", id, sentinel.ErrNotFound)
	}
	stored.Status = models.ScheduledStatusFailed
	stored.LastError = reason
	return nil
}

// Find returns a stored record for test assertions.
func (s *InMemoryStore) Find(id uuid.UUID) (*models.ScheduledEmail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.emails[id]
	if !ok {
		return nil, false
	}
	copied := *stored
	return &copied, true
}

// Verify interface is satisfied.
var _ Store = (*InMemoryStore)(nil)
