package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"autoquote/internal/identity/models"
	"autoquote/internal/identity/store/role"
	"autoquote/internal/identity/store/rolecache"
	"autoquote/internal/identity/store/session"
	"autoquote/internal/identity/store/user"
)

type ServiceSuite struct {
	suite.Suite
	users    *user.InMemoryStore
	roles    *role.InMemoryStore
	sessions *session.InMemoryStore
	cache    *rolecache.MemoryCache
	now      time.Time
	service  *Service
}

func (s *ServiceSuite) SetupTest() {
	s.users = user.NewInMemory()
	s.roles = role.NewInMemory()
	s.sessions = session.NewInMemory()
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s.cache = rolecache.NewMemory(5 * time.Minute).WithClock(func() time.Time { return s.now })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.users, s.roles, s.sessions,
		WithLogger(logger),
		WithRoleCache(s.cache),
		WithSessionTTL(2*time.Hour),
		WithClock(func() time.Time { return s.now }),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// Shared fixture builders.

func (s *ServiceSuite) seedUser(email, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	u := &models.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    "Jamie",
		LastName:     "Ortega",
		PasswordHash: string(hash),
		CreatedAt:    s.now,
	}
	s.Require().NoError(s.users.Create(context.Background(), u))
	return u
}

func (s *ServiceSuite) seedSession(userID uuid.UUID) *models.Session {
	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: s.now,
		ExpiresAt: s.now.Add(2 * time.Hour),
	}
	s.Require().NoError(s.sessions.Create(context.Background(), sess))
	return sess
}
