//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"autoquote/internal/quote/models"
	"autoquote/internal/quote/store"
	"autoquote/pkg/platform/sentinel"
	"autoquote/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "dealer_quotes", "quotes", "users")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedQuote(ctx context.Context, userID uuid.UUID, details string, createdAt time.Time) *models.Quote {
	q := &models.Quote{
		ID:            uuid.New(),
		UserID:        userID,
		RawCarDetails: json.RawMessage(details),
		Status:        models.QuoteStatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	s.Require().NoError(s.store.Create(ctx, q))
	return q
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "Quinn", "Buyer")

	created := s.seedQuote(ctx, userID, `{"year":2020,"make":"Honda","model":"Civic"}`, time.Now().UTC().Truncate(time.Millisecond))

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(userID, found.UserID)
	s.JSONEq(`{"year":2020,"make":"Honda","model":"Civic"}`, string(found.RawCarDetails))
	s.Equal(models.QuoteStatusPending, found.Status)
}

func (s *PostgresStoreSuite) TestFindByIDUnknownReturnsNotFound() {
	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByUserEmbedsDealerResponses() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "Quinn", "Buyer")
	dealerID := s.postgres.CreateTestUser(ctx, s.T(), "Dana", "Dealer")

	quote := s.seedQuote(ctx, userID, `{"year":2021,"make":"Toyota","model":"Camry"}`, time.Now().UTC())
	respondedAt := time.Now().UTC().Truncate(time.Millisecond)
	dq := &models.DealerQuote{
		ID:            uuid.New(),
		QuoteID:       quote.ID,
		DealerID:      dealerID,
		Status:        models.DealerQuoteStatusResponded,
		PriceCents:    2_500_000,
		ResponseNotes: "includes delivery",
		CreatedAt:     respondedAt,
		RespondedAt:   &respondedAt,
	}
	s.Require().NoError(s.store.AddDealerQuote(ctx, dq))

	quotes, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(quotes, 1)
	s.Require().Len(quotes[0].DealerQuotes, 1)

	got := quotes[0].DealerQuotes[0]
	s.Equal(dq.ID, got.ID)
	s.Equal("Dana Dealer", got.DealerName)
	s.Equal(int64(2_500_000), got.PriceCents)
}

func (s *PostgresStoreSuite) TestListByUserScopesToOwner() {
	ctx := context.Background()
	owner := s.postgres.CreateTestUser(ctx, s.T(), "Quinn", "Buyer")
	other := s.postgres.CreateTestUser(ctx, s.T(), "Riley", "Buyer")

	s.seedQuote(ctx, owner, `{"year":2020,"make":"Honda","model":"Civic"}`, time.Now().UTC())
	s.seedQuote(ctx, other, `{"year":2019,"make":"Mazda","model":"3"}`, time.Now().UTC())

	quotes, err := s.store.ListByUser(ctx, owner)
	s.Require().NoError(err)
	s.Len(quotes, 1)
}

func (s *PostgresStoreSuite) TestMalformedDetailsSurviveStorage() {
	// Legacy rows hold double-encoded or incomplete payloads; the store must
	// hand them back untouched for the read path to classify.
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "Quinn", "Buyer")

	created := s.seedQuote(ctx, userID, `"{\"year\":2020,\"make\":\"Honda\",\"model\":\"Civic\"}"`, time.Now().UTC())

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(string(created.RawCarDetails), string(found.RawCarDetails))
}

func (s *PostgresStoreSuite) TestUpdateStatusAndDealerQuoteLifecycle() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "Quinn", "Buyer")
	dealerID := s.postgres.CreateTestUser(ctx, s.T(), "Dana", "Dealer")

	quote := s.seedQuote(ctx, userID, `{"year":2022,"make":"Ford","model":"Focus"}`, time.Now().UTC())
	dq := &models.DealerQuote{
		ID:        uuid.New(),
		QuoteID:   quote.ID,
		DealerID:  dealerID,
		Status:    models.DealerQuoteStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.AddDealerQuote(ctx, dq))

	respondedAt := time.Now().UTC().Truncate(time.Millisecond)
	dq.Status = models.DealerQuoteStatusResponded
	dq.PriceCents = 1_999_900
	dq.ResponseNotes = "certified pre-owned"
	dq.Accepted = true
	dq.RespondedAt = &respondedAt
	s.Require().NoError(s.store.UpdateDealerQuote(ctx, dq))
	s.Require().NoError(s.store.UpdateStatus(ctx, quote.ID, models.QuoteStatusAccepted))

	foundDQ, err := s.store.FindDealerQuote(ctx, dq.ID)
	s.Require().NoError(err)
	s.True(foundDQ.Accepted)
	s.Equal(models.DealerQuoteStatusResponded, foundDQ.Status)
	s.Require().NotNil(foundDQ.RespondedAt)

	foundQuote, err := s.store.FindByID(ctx, quote.ID)
	s.Require().NoError(err)
	s.Equal(models.QuoteStatusAccepted, foundQuote.Status)
}
