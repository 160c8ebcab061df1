// Package service implements coupon management. Admin gating happens in the
// transport middleware against the persisted role; the service trusts its
// callers on that and owns field validation and uniqueness.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/audit"
	"autoquote/internal/coupon/models"
	"autoquote/internal/coupon/store"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/sentinel"
)

// AuditPublisher emits audit events for coupon activity.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

type Service struct {
	store store.Store

	logger         *slog.Logger
	auditPublisher AuditPublisher
	now            func() time.Time
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

// WithClock overrides the service clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, opts ...Option) *Service {
	svc := &Service{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// CreateCommand carries a new coupon.
type CreateCommand struct {
	Code          string
	Name          string
	Description   string
	DiscountType  models.DiscountType
	DiscountValue int64
	UsageLimit    int
	ExpiresAt     *time.Time
	CreatedBy     uuid.UUID
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*models.Coupon, error) {
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          strings.ToUpper(strings.TrimSpace(cmd.Code)),
		Name:          strings.TrimSpace(cmd.Name),
		Description:   strings.TrimSpace(cmd.Description),
		DiscountType:  cmd.DiscountType,
		DiscountValue: cmd.DiscountValue,
		UsageLimit:    cmd.UsageLimit,
		ExpiresAt:     cmd.ExpiresAt,
		CreatedAt:     s.now(),
		CreatedBy:     cmd.CreatedBy,
	}
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
		return nil, dErrors.New(dErrors.CodeValidation, "expires_at is in the past")
	}

	if err := s.store.Create(ctx, coupon); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "coupon code already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create coupon")
	}

	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, audit.Event{
			UserID:  cmd.CreatedBy.String(),
			Subject: coupon.Code,
			Action:  string(audit.EventCouponCreated),
		}); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", audit.EventCouponCreated, "error", err)
		}
	}
	return coupon, nil
}

// List returns all coupons, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Coupon, error) {
	coupons, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list coupons")
	}
	return coupons, nil
}
