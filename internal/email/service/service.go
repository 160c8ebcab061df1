// Package service implements email dispatch: immediate sends go straight to
// the provider, future-scheduled messages are persisted for the dispatch
// worker.
package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/audit"
	"autoquote/internal/email/models"
	"autoquote/internal/email/provider"
	"autoquote/internal/email/store"
	dErrors "autoquote/pkg/domain-errors"
)

// AuditPublisher emits audit events for email activity.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

type Service struct {
	sender    provider.Sender
	scheduled store.Store

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

func NewService(sender provider.Sender, scheduled store.Store, opts ...Option) *Service {
	svc := &Service{
		sender:    sender,
		scheduled: scheduled,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// DispatchResult reports what happened to the message.
type DispatchResult struct {
	Scheduled   bool
	ScheduledID uuid.UUID
}

// Dispatch sends the message now, or persists it when ScheduledFor is in the
// future. A ScheduledFor in the past behaves exactly like no scheduling at
// all. A provider failure is an internal error: the boundary answers 500, the
// message is not silently queued.
func (s *Service) Dispatch(ctx context.Context, msg models.Message) (*DispatchResult, error) {
	if err := s.validate(msg); err != nil {
		return nil, err
	}

	now := s.now()
	if msg.ScheduledFor != nil && msg.ScheduledFor.After(now) {
		scheduled := &models.ScheduledEmail{
			ID:           uuid.New(),
			To:           msg.To,
			Subject:      msg.Subject,
			HTML:         msg.HTML,
			ScheduledFor: *msg.ScheduledFor,
			Status:       models.ScheduledStatusPending,
			CreatedAt:    now,
		}
		if err := s.scheduled.Create(ctx, scheduled); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to schedule email")
		}
		s.logAudit(ctx, string(audit.EventEmailScheduled), scheduled.ID.String())
		return &DispatchResult{Scheduled: true, ScheduledID: scheduled.ID}, nil
	}

	if err := s.sender.Send(ctx, msg.To, msg.Subject, msg.HTML); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "email provider rejected the message")
	}
	s.logAudit(ctx, string(audit.EventEmailSent), strings.Join(msg.To, ","))
	return &DispatchResult{}, nil
}

func (s *Service) validate(msg models.Message) error {
	if len(msg.To) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one recipient is required")
	}
	for _, addr := range msg.To {
		if _, err := mail.ParseAddress(addr); err != nil {
			return dErrors.New(dErrors.CodeValidation, "invalid recipient: "+addr)
		}
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	if strings.TrimSpace(msg.HTML) == "" {
		return dErrors.New(dErrors.CodeValidation, "html body is required")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, action, subject string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject: subject,
		Action:  action,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
