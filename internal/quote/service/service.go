// Package service implements quote listing and the dealer response lifecycle.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/audit"
	"autoquote/internal/platform/tracer"
	"autoquote/internal/quote/metrics"
	"autoquote/internal/quote/models"
	"autoquote/internal/quote/store"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/sentinel"
)

// AuditPublisher emits audit events for quote activity.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service owns quote reads and writes.
type Service struct {
	store store.Store

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         tracer.Tracer
	now            func() time.Time
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
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
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc
}

// ListForUser returns the user's quotes, newest first, with invalid records
// excluded and counted.
//
// A nil userID disables the operation entirely: it returns an empty result
// without touching the store. That guard is part of the contract, not an
// optimization; callers resolve identity asynchronously and routinely ask
// before they know who is signed in.
//
// Ordering is enforced here regardless of what the store returned: newest
// first by creation time is a contract with every consumer of this list.
// A quote whose car-details payload fails validation is dropped whole; no
// partial quote is ever returned. Dropped records are logged and surfaced
// through ListResult.Dropped.
func (s *Service) ListForUser(ctx context.Context, userID *uuid.UUID) (result *models.ListResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanQuoteList)
	defer func() { span.End(err) }()

	if userID == nil {
		return &models.ListResult{}, nil
	}
	span.SetAttributes(tracer.String(tracer.AttrUserID, userID.String()))

	started := s.now()
	if s.metrics != nil {
		s.metrics.Lists.Inc()
	}

	quotes, err := s.store.ListByUser(ctx, *userID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ListFailures.Inc()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load quotes")
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})

	result = &models.ListResult{Quotes: make([]*models.Quote, 0, len(quotes))}
	for _, quote := range quotes {
		details, err := models.ParseCarDetails(quote.RawCarDetails)
		if err != nil {
			result.Dropped++
			s.logger.ErrorContext(ctx, "dropping quote with invalid car details",
				"quote_id", quote.ID.String(), "error", err)
			s.logAudit(ctx, string(audit.EventQuoteDroppedInvalid), userID.String(), quote.ID.String())
			if s.metrics != nil {
				s.metrics.DroppedRecords.Inc()
			}
			continue
		}
		quote.Details = details
		result.Quotes = append(result.Quotes, quote)
	}

	span.SetAttributes(
		tracer.Int64(tracer.AttrQuoteCount, int64(len(result.Quotes))),
		tracer.Int64(tracer.AttrDroppedCount, int64(result.Dropped)),
	)
	if s.metrics != nil {
		s.metrics.ListDurationMs.Observe(float64(s.now().Sub(started)) / float64(time.Millisecond))
	}
	return result, nil
}

// CreateQuoteCommand carries a new quote request.
type CreateQuoteCommand struct {
	UserID     uuid.UUID
	CarDetails json.RawMessage
}

// Create validates the car details up front; unlike historical rows read back
// out of the store, a new quote is never allowed in with a bad payload.
func (s *Service) Create(ctx context.Context, cmd CreateQuoteCommand) (quote *models.Quote, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanQuoteCreate)
	defer func() { span.End(err) }()

	details, err := models.ParseCarDetails(cmd.CarDetails)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	if details == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "car details are required")
	}

	now := s.now()
	quote = &models.Quote{
		ID:            uuid.New(),
		UserID:        cmd.UserID,
		RawCarDetails: cmd.CarDetails,
		Details:       details,
		Status:        models.QuoteStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, quote); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create quote")
	}

	s.logAudit(ctx, string(audit.EventQuoteCreated), cmd.UserID.String(), quote.ID.String())
	if s.metrics != nil {
		s.metrics.QuotesCreated.Inc()
	}
	return quote, nil
}

// RespondCommand carries a dealer's offer on a quote.
type RespondCommand struct {
	QuoteID       uuid.UUID
	DealerID      uuid.UUID
	PriceCents    int64
	ResponseNotes string
}

// Respond records a dealer's offer and moves the parent quote to responded.
func (s *Service) Respond(ctx context.Context, cmd RespondCommand) (*models.DealerQuote, error) {
	if cmd.PriceCents <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price must be positive")
	}

	quote, err := s.store.FindByID(ctx, cmd.QuoteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "quote not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load quote")
	}
	if quote.Status == models.QuoteStatusAccepted || quote.Status == models.QuoteStatusClosed {
		return nil, dErrors.New(dErrors.CodeConflict, "quote is no longer open for responses")
	}

	now := s.now()
	dq := &models.DealerQuote{
		ID:            uuid.New(),
		QuoteID:       cmd.QuoteID,
		DealerID:      cmd.DealerID,
		Status:        models.DealerQuoteStatusResponded,
		PriceCents:    cmd.PriceCents,
		ResponseNotes: cmd.ResponseNotes,
		CreatedAt:     now,
		RespondedAt:   &now,
	}
	if err := s.store.AddDealerQuote(ctx, dq); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record dealer response")
	}
	if err := s.store.UpdateStatus(ctx, cmd.QuoteID, models.QuoteStatusResponded); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update quote status")
	}

	if s.metrics != nil {
		s.metrics.DealerResponses.Inc()
	}
	return dq, nil
}

// Accept marks a dealer quote as the buyer's choice and closes the parent
// to further responses. Only the quote's owner may accept.
func (s *Service) Accept(ctx context.Context, userID, quoteID, dealerQuoteID uuid.UUID) (*models.DealerQuote, error) {
	quote, err := s.store.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "quote not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load quote")
	}
	if quote.UserID != userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "quote belongs to another user")
	}

	dq, err := s.store.FindDealerQuote(ctx, dealerQuoteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "dealer quote not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dealer quote")
	}
	if dq.QuoteID != quoteID {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "dealer quote belongs to another quote")
	}

	dq.Accepted = true
	if err := s.store.UpdateDealerQuote(ctx, dq); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to accept dealer quote")
	}
	if err := s.store.UpdateStatus(ctx, quoteID, models.QuoteStatusAccepted); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update quote status")
	}

	s.logAudit(ctx, string(audit.EventDealerQuoteAccepted), userID.String(), dealerQuoteID.String())
	if s.metrics != nil {
		s.metrics.DealerQuotesAccepted.Inc()
	}
	return dq, nil
}

func (s *Service) logAudit(ctx context.Context, action, userID, subject string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:  userID,
		Subject: subject,
		Action:  action,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
