package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"autoquote/internal/identity/models"
	"autoquote/internal/identity/store/rolecache"
	"autoquote/internal/platform/tracer"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/sentinel"
)

// Resolve maps a session onto an effective role and profile.
//
// A missing, expired, or revoked session resolves to RoleNone; that is a
// successful resolution, not an error. Only infrastructure failures (session
// store down, both role queries failing) return an error, so callers can tell
// "signed out" apart from "could not find out".
//
// viewMode is an explicit per-call override, applied unconditionally after
// the persisted resolution is cached: the cache always holds the real role,
// and the override is display-only. Admin gating reads the persisted role and
// never sees it.
func (s *Service) Resolve(ctx context.Context, sessionID uuid.UUID, viewMode models.ViewMode) (res *models.Resolution, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRoleResolve)
	defer func() { span.End(err) }()

	started := s.now()
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.Resolution{Role: models.RoleNone}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to look up session")
	}
	if !sess.Active(s.now()) {
		return &models.Resolution{Role: models.RoleNone}, nil
	}

	entry, fromCache := s.cachedEntry(ctx, sess.UserID)
	if !fromCache {
		entry, err = s.resolveFresh(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, sess.UserID, entry)
	}

	res = &models.Resolution{
		Role:      entry.Role,
		User:      entry.User,
		FromCache: fromCache,
	}
	s.applyViewMode(ctx, res, viewMode)

	span.SetAttributes(
		tracer.String(tracer.AttrUserID, sess.UserID.String()),
		tracer.Bool(tracer.AttrCacheHit, fromCache),
		tracer.String(tracer.AttrRole, string(res.Role)),
	)
	if s.metrics != nil {
		s.metrics.RoleResolutions.WithLabelValues(string(res.Role)).Inc()
		s.metrics.ResolveDurationMs.Observe(float64(s.now().Sub(started)) / float64(time.Millisecond))
	}
	return res, nil
}

// ResolveUser resolves a user directly, bypassing session lookup. Used by
// internal callers that already hold an authenticated user id.
func (s *Service) ResolveUser(ctx context.Context, userID uuid.UUID, viewMode models.ViewMode) (*models.Resolution, error) {
	entry, fromCache := s.cachedEntry(ctx, userID)
	if !fromCache {
		var err error
		entry, err = s.resolveFresh(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, userID, entry)
	}

	res := &models.Resolution{
		Role:      entry.Role,
		User:      entry.User,
		FromCache: fromCache,
	}
	s.applyViewMode(ctx, res, viewMode)
	return res, nil
}

func (s *Service) cachedEntry(ctx context.Context, userID uuid.UUID) (*rolecache.Entry, bool) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRoleCacheGet)
	defer span.End(nil)

	entry, ok := s.cache.Get(ctx, userID)
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, ok))
	if s.metrics != nil {
		if ok {
			s.metrics.RoleCacheHits.Inc()
		} else {
			s.metrics.RoleCacheMisses.Inc()
		}
	}
	return entry, ok
}

// resolveFresh fetches the profile and role concurrently. A missing profile is
// tolerated (the session identity stands alone); a missing role row defaults
// to the user role. Any other role store failure gets one retry before the
// resolution fails as a whole.
func (s *Service) resolveFresh(ctx context.Context, userID uuid.UUID) (*rolecache.Entry, error) {
	var (
		profile *models.User
		role    models.Role
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.users.FindByID(gctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load profile")
		}
		profile = found
		return nil
	})
	g.Go(func() error {
		resolved, err := s.roleWithRetry(gctx, userID)
		if err != nil {
			return err
		}
		role = resolved
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &rolecache.Entry{Role: role, User: profile}, nil
}

func (s *Service) roleWithRetry(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	found, err := s.roles.FindByUser(ctx, userID)
	if err == nil {
		return found, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.RoleUser, nil
	}

	if s.metrics != nil {
		s.metrics.RoleQueryRetries.Inc()
	}
	s.logger.WarnContext(ctx, "role query failed, retrying once",
		"user_id", userID.String(), "error", err)

	found, err = s.roles.FindByUser(ctx, userID)
	if err == nil {
		return found, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.RoleUser, nil
	}
	return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "role lookup failed after retry")
}

// applyViewMode replaces the persisted role with the preview role. The
// override is a display convenience for privileged dashboards; the persisted
// role was cached before this point and the admin gate never consults the
// overridden value, so widening the displayed role grants nothing.
func (s *Service) applyViewMode(ctx context.Context, res *models.Resolution, viewMode models.ViewMode) {
	if viewMode == models.ViewModeNone {
		return
	}
	effective := viewMode.Apply(res.Role)
	if effective == res.Role {
		return
	}
	res.Role = effective
	res.Overridden = true
	if s.metrics != nil {
		s.metrics.ViewModeOverrides.WithLabelValues(string(viewMode)).Inc()
	}
	s.logger.DebugContext(ctx, "view mode override applied",
		"view_mode", string(viewMode), "effective_role", string(effective))
}
