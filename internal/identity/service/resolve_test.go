package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	dErrors "autoquote/pkg/domain-errors"
)

func (s *ServiceSuite) TestResolveNoSessionIsRoleNone() {
	res, err := s.service.Resolve(context.Background(), uuid.New(), models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleNone, res.Role)
	s.Nil(res.User)
}

func (s *ServiceSuite) TestResolveExpiredSessionIsRoleNone() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")
	sess := s.seedSession(seeded.ID)
	s.now = sess.ExpiresAt.Add(time.Minute)

	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleNone, res.Role)
}

func (s *ServiceSuite) TestResolveRevokedSessionIsRoleNone() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")
	sess := s.seedSession(seeded.ID)
	s.Require().NoError(s.sessions.Revoke(context.Background(), sess.ID, s.now))

	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleNone, res.Role)
}

func (s *ServiceSuite) TestResolveDefaultsToUserRole() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")
	sess := s.seedSession(seeded.ID)

	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, res.Role)
	s.Require().NotNil(res.User)
	s.Equal(seeded.Email, res.User.Email)
	s.False(res.FromCache)
}

func (s *ServiceSuite) TestResolveUsesAssignedRole() {
	seeded := s.seedUser("dealer@example.com", "hunter2-long")
	s.Require().NoError(s.roles.Assign(context.Background(), seeded.ID, models.RoleDealer))
	sess := s.seedSession(seeded.ID)

	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleDealer, res.Role)
}

func (s *ServiceSuite) TestResolveMissingProfileTolerated() {
	orphan := uuid.New()
	sess := s.seedSession(orphan)

	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, res.Role)
	s.Nil(res.User)
}

func (s *ServiceSuite) TestResolveViewModeOverridesPersistedRole() {
	seeded := s.seedUser("admin@example.com", "hunter2-long")
	sess := s.seedSession(seeded.ID)

	// Persisted role is the default user role; the admin preview toggle still
	// changes the effective role because the override is display-only.
	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeAdmin)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, res.Role)
	s.True(res.Overridden)
}

func (s *ServiceSuite) TestResolveCachesPersistedRoleNotOverride() {
	seeded := s.seedUser("admin@example.com", "hunter2-long")
	sess := s.seedSession(seeded.ID)

	_, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeDealer)
	s.Require().NoError(err)

	entry, ok := s.cache.Get(context.Background(), seeded.ID)
	s.Require().True(ok)
	s.Equal(models.RoleUser, entry.Role)

	// A later call without the override sees the real role again.
	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, res.Role)
	s.False(res.Overridden)
}

func (s *ServiceSuite) TestResolveServesFromCacheWithinWindow() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")
	sess := s.seedSession(seeded.ID)

	first, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.False(first.FromCache)

	// A store outage inside the freshness window is invisible.
	s.roles.FailNext(errors.New("connection refused"), 2)
	second, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.True(second.FromCache)
	s.Equal(models.RoleUser, second.Role)
}

func (s *ServiceSuite) TestResolveRefreshesAfterWindow() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")
	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    seeded.ID,
		CreatedAt: s.now,
		ExpiresAt: s.now.Add(24 * time.Hour),
	}
	s.Require().NoError(s.sessions.Create(context.Background(), sess))

	_, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)

	s.Require().NoError(s.roles.Assign(context.Background(), seeded.ID, models.RoleAdmin))
	s.now = s.now.Add(6 * time.Minute)

	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.False(res.FromCache)
	s.Equal(models.RoleAdmin, res.Role)
}

func (s *ServiceSuite) TestResolveRetriesRoleQueryOnce() {
	seeded := s.seedUser("dealer@example.com", "hunter2-long")
	s.Require().NoError(s.roles.Assign(context.Background(), seeded.ID, models.RoleDealer))
	sess := s.seedSession(seeded.ID)

	s.roles.FailNext(errors.New("connection refused"), 1)

	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleDealer, res.Role)
}

func (s *ServiceSuite) TestResolveFailsWhenRetryExhausted() {
	seeded := s.seedUser("dealer@example.com", "hunter2-long")
	sess := s.seedSession(seeded.ID)

	s.roles.FailNext(errors.New("connection refused"), 2)

	_, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	// Failures are never cached; the next attempt succeeds.
	res, err := s.service.Resolve(context.Background(), sess.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, res.Role)
	s.False(res.FromCache)
}

func (s *ServiceSuite) TestResolveUserBypassesSessions() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")

	res, err := s.service.ResolveUser(context.Background(), seeded.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, res.Role)
	s.Require().NotNil(res.User)
	s.Equal(seeded.ID, res.User.ID)
}
