package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"autoquote/internal/quote/models"
	"autoquote/internal/quote/store"
	dErrors "autoquote/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	now     time.Time
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store,
		WithLogger(logger),
		WithClock(func() time.Time { return s.now }),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) seedQuote(userID uuid.UUID, details string, createdAt time.Time) *models.Quote {
	quote := &models.Quote{
		ID:            uuid.New(),
		UserID:        userID,
		RawCarDetails: json.RawMessage(details),
		Status:        models.QuoteStatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	s.Require().NoError(s.store.Create(context.Background(), quote))
	return quote
}

func (s *ServiceSuite) TestListForUserNilUserReturnsEmpty() {
	s.store.FailNext(errors.New("store must not be called"))

	result, err := s.service.ListForUser(context.Background(), nil)
	s.Require().NoError(err)
	s.Empty(result.Quotes)
	s.Zero(result.Dropped)

	// The guard short-circuits before the store; the planted failure must
	// still be pending.
	userID := uuid.New()
	_, err = s.service.ListForUser(context.Background(), &userID)
	s.Error(err)
}

func (s *ServiceSuite) TestListForUserEnforcesNewestFirst() {
	userID := uuid.New()
	// Seed deliberately out of order: oldest in the middle, newest first
	// position last.
	middle := s.seedQuote(userID, `{"year":2019,"make":"Mazda","model":"3"}`, s.now.Add(-2*time.Hour))
	oldest := s.seedQuote(userID, `{"year":2015,"make":"Ford","model":"Focus"}`, s.now.Add(-24*time.Hour))
	newest := s.seedQuote(userID, `{"year":2022,"make":"Kia","model":"EV6"}`, s.now.Add(-time.Minute))

	result, err := s.service.ListForUser(context.Background(), &userID)
	s.Require().NoError(err)
	s.Require().Len(result.Quotes, 3)
	s.Equal(newest.ID, result.Quotes[0].ID)
	s.Equal(middle.ID, result.Quotes[1].ID)
	s.Equal(oldest.ID, result.Quotes[2].ID)
}

func (s *ServiceSuite) TestListForUserDropsInvalidRecordsWhole() {
	userID := uuid.New()
	valid := s.seedQuote(userID, `{"year":2020,"make":"Honda","model":"Civic"}`, s.now.Add(-time.Hour))
	s.seedQuote(userID, `{"year":"broken","make":"Honda"}`, s.now.Add(-2*time.Hour))
	s.seedQuote(userID, `{not json`, s.now.Add(-3*time.Hour))

	result, err := s.service.ListForUser(context.Background(), &userID)
	s.Require().NoError(err)
	s.Require().Len(result.Quotes, 1)
	s.Equal(valid.ID, result.Quotes[0].ID)
	s.Equal(2, result.Dropped)
	s.Require().NotNil(result.Quotes[0].Details)
	s.Equal("2020 Honda Civic", result.Quotes[0].Details.String())
}

func (s *ServiceSuite) TestListForUserIdempotent() {
	userID := uuid.New()
	s.seedQuote(userID, `{"year":2020,"make":"Honda","model":"Civic"}`, s.now.Add(-time.Hour))
	s.seedQuote(userID, `{"year":2021,"make":"Tesla","model":"3"}`, s.now.Add(-2*time.Hour))

	first, err := s.service.ListForUser(context.Background(), &userID)
	s.Require().NoError(err)
	second, err := s.service.ListForUser(context.Background(), &userID)
	s.Require().NoError(err)

	s.Require().Len(second.Quotes, len(first.Quotes))
	for i := range first.Quotes {
		s.Equal(first.Quotes[i].ID, second.Quotes[i].ID)
	}
}

func (s *ServiceSuite) TestListForUserStoreFailure() {
	userID := uuid.New()
	s.store.FailNext(errors.New("connection refused"))

	_, err := s.service.ListForUser(context.Background(), &userID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestListForUserScopedToUser() {
	mine := uuid.New()
	theirs := uuid.New()
	s.seedQuote(mine, `{"year":2020,"make":"Honda","model":"Civic"}`, s.now)
	s.seedQuote(theirs, `{"year":2021,"make":"Tesla","model":"3"}`, s.now)

	result, err := s.service.ListForUser(context.Background(), &mine)
	s.Require().NoError(err)
	s.Require().Len(result.Quotes, 1)
	s.Equal(mine, result.Quotes[0].UserID)
}

func (s *ServiceSuite) TestCreateRejectsInvalidDetails() {
	_, err := s.service.Create(context.Background(), CreateQuoteCommand{
		UserID:     uuid.New(),
		CarDetails: json.RawMessage(`{"year":2020}`),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Create(context.Background(), CreateQuoteCommand{
		UserID: uuid.New(),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCreateAndAcceptLifecycle() {
	userID := uuid.New()
	quote, err := s.service.Create(context.Background(), CreateQuoteCommand{
		UserID:     userID,
		CarDetails: json.RawMessage(`{"year":2020,"make":"Honda","model":"Civic"}`),
	})
	s.Require().NoError(err)
	s.Equal(models.QuoteStatusPending, quote.Status)

	dq, err := s.service.Respond(context.Background(), RespondCommand{
		QuoteID:       quote.ID,
		DealerID:      uuid.New(),
		PriceCents:    2_350_000,
		ResponseNotes: "includes delivery",
	})
	s.Require().NoError(err)
	s.Equal(models.DealerQuoteStatusResponded, dq.Status)

	accepted, err := s.service.Accept(context.Background(), userID, quote.ID, dq.ID)
	s.Require().NoError(err)
	s.True(accepted.Accepted)

	stored, err := s.store.FindByID(context.Background(), quote.ID)
	s.Require().NoError(err)
	s.Equal(models.QuoteStatusAccepted, stored.Status)

	// An accepted quote takes no further responses.
	_, err = s.service.Respond(context.Background(), RespondCommand{
		QuoteID:    quote.ID,
		DealerID:   uuid.New(),
		PriceCents: 2_000_000,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestAcceptRequiresOwnership() {
	owner := uuid.New()
	quote, err := s.service.Create(context.Background(), CreateQuoteCommand{
		UserID:     owner,
		CarDetails: json.RawMessage(`{"year":2020,"make":"Honda","model":"Civic"}`),
	})
	s.Require().NoError(err)

	dq, err := s.service.Respond(context.Background(), RespondCommand{
		QuoteID:    quote.ID,
		DealerID:   uuid.New(),
		PriceCents: 100,
	})
	s.Require().NoError(err)

	_, err = s.service.Accept(context.Background(), uuid.New(), quote.ID, dq.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestAcceptRejectsCrossQuoteResponse() {
	userID := uuid.New()
	first, err := s.service.Create(context.Background(), CreateQuoteCommand{
		UserID:     userID,
		CarDetails: json.RawMessage(`{"year":2020,"make":"Honda","model":"Civic"}`),
	})
	s.Require().NoError(err)
	second, err := s.service.Create(context.Background(), CreateQuoteCommand{
		UserID:     userID,
		CarDetails: json.RawMessage(`{"year":2021,"make":"Tesla","model":"3"}`),
	})
	s.Require().NoError(err)

	dq, err := s.service.Respond(context.Background(), RespondCommand{
		QuoteID:    second.ID,
		DealerID:   uuid.New(),
		PriceCents: 100,
	})
	s.Require().NoError(err)

	_, err = s.service.Accept(context.Background(), userID, first.ID, dq.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestRespondUnknownQuote() {
	_, err := s.service.Respond(context.Background(), RespondCommand{
		QuoteID:    uuid.New(),
		DealerID:   uuid.New(),
		PriceCents: 100,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
