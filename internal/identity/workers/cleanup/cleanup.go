// Package cleanup periodically removes expired sessions.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionStore exposes cleanup for expired sessions.
type SessionStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Service periodically removes expired session rows.
type Service struct {
	sessions SessionStore
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger overrides the logger used for cleanup errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the service clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with the required store and options applied.
func New(sessions SessionStore, opts ...Option) (*Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	svc := &Service{
		sessions: sessions,
		interval: 15 * time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "session cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce deletes expired sessions and reports how many went away.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	deleted, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	if deleted > 0 {
		s.logger.InfoContext(ctx, "expired sessions removed", "count", deleted)
	}
	return deleted, nil
}
