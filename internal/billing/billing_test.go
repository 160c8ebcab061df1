package billing

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	identitymodels "autoquote/internal/identity/models"
	userstore "autoquote/internal/identity/store/user"
)

func TestVerifySignature(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{"type":"subscription.created"}`)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	header := Sign(secret, payload, now)
	if err := VerifySignature(secret, payload, header, now, DefaultTolerance); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	if err := VerifySignature([]byte("other"), payload, header, now, DefaultTolerance); err == nil {
		t.Fatal("wrong secret accepted")
	}
	if err := VerifySignature(secret, []byte(`{"tampered":1}`), header, now, DefaultTolerance); err == nil {
		t.Fatal("tampered payload accepted")
	}
	if err := VerifySignature(secret, payload, header, now.Add(10*time.Minute), DefaultTolerance); err == nil {
		t.Fatal("stale timestamp accepted")
	}
	if err := VerifySignature(secret, payload, "v1=deadbeef", now, DefaultTolerance); err == nil {
		t.Fatal("malformed header accepted")
	}
	if err := VerifySignature(nil, payload, header, now, DefaultTolerance); err == nil {
		t.Fatal("empty secret accepted")
	}
}

type WebhookSuite struct {
	suite.Suite
	users  *userstore.InMemoryStore
	secret []byte
	now    time.Time
	router http.Handler
}

func (s *WebhookSuite) SetupTest() {
	s.users = userstore.NewInMemory()
	s.secret = []byte("whsec_test")
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(s.users, WithLogger(logger))
	h := NewHandler(svc, s.secret, logger,
		WithHandlerClock(func() time.Time { return s.now }),
	)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func TestWebhookSuite(t *testing.T) {
	suite.Run(t, new(WebhookSuite))
}

func (s *WebhookSuite) seedUser(email string) *identitymodels.User {
	u := &identitymodels.User{
		ID:                 uuid.New(),
		Email:              email,
		SubscriptionPlan:   identitymodels.PlanBasic,
		SubscriptionStatus: identitymodels.SubscriptionStatusInactive,
	}
	s.Require().NoError(s.users.Create(context.Background(), u))
	return u
}

func (s *WebhookSuite) post(payload string, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader([]byte(payload)))
	if sign {
		req.Header.Set(SignatureHeader, Sign(s.secret, []byte(payload), s.now))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *WebhookSuite) TestMissingSignature400() {
	rec := s.post(`{"type":"subscription.created"}`, false)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *WebhookSuite) TestInvalidSignature400() {
	payload := `{"type":"subscription.created"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader([]byte(payload)))
	req.Header.Set(SignatureHeader, Sign([]byte("wrong-secret"), []byte(payload), s.now))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *WebhookSuite) TestSubscriptionCreatedUpdatesProfile() {
	seeded := s.seedUser("buyer@example.com")

	rec := s.post(`{
		"id": "evt_1",
		"type": "subscription.created",
		"data": {"customer_email": "buyer@example.com", "customer_id": "cus_123", "plan": "pro", "status": "active"}
	}`, true)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.users.FindByID(context.Background(), seeded.ID)
	s.Require().NoError(err)
	s.Equal("pro", stored.SubscriptionPlan)
	s.Equal("active", stored.SubscriptionStatus)
	s.Equal("cus_123", stored.BillingCustomerID)
}

func (s *WebhookSuite) TestSubscriptionDeletedResetsProfile() {
	seeded := s.seedUser("buyer@example.com")
	s.Require().NoError(s.users.UpdateSubscriptionByEmail(context.Background(), seeded.Email,
		userstore.SubscriptionUpdate{Plan: "pro", Status: "active", BillingCustomerID: "cus_123"}))

	rec := s.post(`{
		"id": "evt_2",
		"type": "subscription.deleted",
		"data": {"customer_email": "buyer@example.com"}
	}`, true)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.users.FindByID(context.Background(), seeded.ID)
	s.Require().NoError(err)
	s.Equal(identitymodels.PlanBasic, stored.SubscriptionPlan)
	s.Equal(identitymodels.SubscriptionStatusInactive, stored.SubscriptionStatus)
}

func (s *WebhookSuite) TestProcessingFailure400() {
	// No profile for the email: created events cannot apply.
	rec := s.post(`{
		"id": "evt_3",
		"type": "subscription.created",
		"data": {"customer_email": "nobody@example.com", "plan": "pro", "status": "active"}
	}`, true)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *WebhookSuite) TestUnknownEventTypeAcknowledged() {
	rec := s.post(`{"id": "evt_4", "type": "invoice.paid", "data": {}}`, true)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *WebhookSuite) TestMalformedPayload400() {
	rec := s.post(`{not json`, true)
	s.Equal(http.StatusBadRequest, rec.Code)
}
