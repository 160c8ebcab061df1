package role

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	"autoquote/pkg/platform/sentinel"
)

// InMemoryStore stores role assignments in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	roles map[uuid.UUID]models.Role

	// failNext simulates transient infrastructure failures on upcoming
	// FindByUser calls. Tests use it to exercise the resolver's retry budget.
	failNext  error
	failCount int
}

// NewInMemory constructs an empty in-memory role store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{roles: make(map[uuid.UUID]models.Role)}
}

// FailNext makes the next times FindByUser calls return err.
func (s *InMemoryStore) FailNext(err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
	s.failCount = times
}

func (s *InMemoryStore) FindByUser(_ context.Context, userID uuid.UUID) (models.Role, error) {
	s.mu.Lock()
	if s.failCount > 0 {
		err := s.failNext
		s.failCount--
		if s.failCount == 0 {
			s.failNext = nil
		}
		s.mu.Unlock()
		return models.RoleNone, err
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if role, ok := s.roles[userID]; ok {
		return role, nil
	}
	return models.RoleNone, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Assign(_ context.Context, userID uuid.UUID, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = role
	return nil
}

// Verify interface is satisfied.
var _ Store = (*InMemoryStore)(nil)
