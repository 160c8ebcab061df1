package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"autoquote/internal/audit"
	identitymodels "autoquote/internal/identity/models"
	"autoquote/internal/identity/store/user"
	"autoquote/pkg/platform/sentinel"
)

// Webhook event types emitted by the payment processor.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
)

// Event is the decoded webhook payload.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the subscription fields keyed by customer email.
type EventData struct {
	CustomerEmail string `json:"customer_email"`
	CustomerID    string `json:"customer_id"`
	Plan          string `json:"plan"`
	Status        string `json:"status"`
}

// AuditPublisher emits audit events for subscription changes.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service applies webhook events to user profiles.
type Service struct {
	users user.Store

	logger         *slog.Logger
	auditPublisher AuditPublisher
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func NewService(users user.Store, opts ...Option) *Service {
	svc := &Service{users: users}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// HandleEvent applies one verified webhook event. Created and updated set the
// profile's subscription fields from the event; deleted resets them to the
// basic/inactive baseline. Unknown event types are acknowledged and skipped
// so the processor does not retry them forever.
func (s *Service) HandleEvent(ctx context.Context, event Event) error {
	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		if event.Data.CustomerEmail == "" {
			return fmt.Errorf("event %s has no customer email", event.ID)
		}
		update := user.SubscriptionUpdate{
			Plan:              event.Data.Plan,
			Status:            event.Data.Status,
			BillingCustomerID: event.Data.CustomerID,
		}
		if update.Plan == "" {
			update.Plan = identitymodels.PlanBasic
		}
		if update.Status == "" {
			update.Status = identitymodels.SubscriptionStatusActive
		}
		if err := s.users.UpdateSubscriptionByEmail(ctx, event.Data.CustomerEmail, update); err != nil {
			return fmt.Errorf("apply %s: %w", event.Type, err)
		}
		s.logAudit(ctx, string(audit.EventSubscriptionUpdated), event.Data.CustomerEmail)
		return nil

	case EventSubscriptionDeleted:
		if event.Data.CustomerEmail == "" {
			return fmt.Errorf("event %s has no customer email", event.ID)
		}
		update := user.SubscriptionUpdate{
			Plan:   identitymodels.PlanBasic,
			Status: identitymodels.SubscriptionStatusInactive,
		}
		err := s.users.UpdateSubscriptionByEmail(ctx, event.Data.CustomerEmail, update)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// The profile may already be gone; a deleted subscription for
				// a deleted user is not a failure worth a processor retry.
				s.logger.WarnContext(ctx, "subscription deleted for unknown profile",
					"customer_email", event.Data.CustomerEmail)
				return nil
			}
			return fmt.Errorf("apply %s: %w", event.Type, err)
		}
		s.logAudit(ctx, string(audit.EventSubscriptionCancelled), event.Data.CustomerEmail)
		return nil

	default:
		s.logger.InfoContext(ctx, "ignoring webhook event", "type", event.Type, "event_id", event.ID)
		return nil
	}
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
