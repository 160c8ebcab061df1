package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"autoquote/internal/coupon/service"
	"autoquote/internal/coupon/store"
	"autoquote/internal/platform/middleware"
)

// stubRoles maps user ids to persisted roles for the admin gate.
type stubRoles struct {
	roles map[string]string
}

func (s *stubRoles) PersistedRole(_ context.Context, userID string) (string, error) {
	if role, ok := s.roles[userID]; ok {
		return role, nil
	}
	return "user", nil
}

type HandlerSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	adminID uuid.UUID
	userID  uuid.UUID
	router  http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.adminID = uuid.New()
	s.userID = uuid.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewService(s.store, service.WithLogger(logger))

	roles := &stubRoles{roles: map[string]string{s.adminID.String(): "admin"}}

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(stubAuth)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(roles, logger))
		h.Register(r)
	})
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func stubAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.ContextKeyUserID, r.Header.Get("X-User-ID"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HandlerSuite) post(userID uuid.UUID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/coupons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestNonAdminGets400AdminAccessRequired() {
	rec := s.post(s.userID, `{"code":"SPRING10","name":"Spring","discount_type":"percentage","discount_value":10}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "admin_access_required")
}

func (s *HandlerSuite) TestAdminGateIgnoresViewMode() {
	// A view-mode header never widens permissions: the gate reads the
	// persisted role only.
	req := httptest.NewRequest(http.MethodGet, "/admin/coupons", nil)
	req.Header.Set("X-User-ID", s.userID.String())
	req.Header.Set("X-View-Mode", "admin")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "admin_access_required")
}

func (s *HandlerSuite) TestMissingDiscountValueGets400NamingField() {
	rec := s.post(s.adminID, `{"code":"SPRING10","name":"Spring","discount_type":"percentage"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "discount_value")
}

func (s *HandlerSuite) TestCreateReturnsRecord() {
	rec := s.post(s.adminID, `{"code":"spring10","name":"Spring","description":"Spring sale","discount_type":"percentage","discount_value":10,"usage_limit":100}`)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var resp CouponResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("SPRING10", resp.Code)
	s.Equal("percentage", resp.DiscountType)
	s.EqualValues(10, resp.DiscountValue)
}

func (s *HandlerSuite) TestDuplicateCodeConflicts() {
	first := s.post(s.adminID, `{"code":"SPRING10","name":"Spring","discount_type":"percentage","discount_value":10}`)
	s.Require().Equal(http.StatusOK, first.Code)

	second := s.post(s.adminID, `{"code":"spring10","name":"Spring again","discount_type":"percentage","discount_value":15}`)
	s.Equal(http.StatusConflict, second.Code)
}

func (s *HandlerSuite) TestListNewestFirst() {
	s.Require().Equal(http.StatusOK, s.post(s.adminID,
		`{"code":"FIRST","name":"First","discount_type":"fixed","discount_value":500}`).Code)
	time.Sleep(2 * time.Millisecond)
	s.Require().Equal(http.StatusOK, s.post(s.adminID,
		`{"code":"SECOND","name":"Second","discount_type":"fixed","discount_value":700}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/coupons", nil)
	req.Header.Set("X-User-ID", s.adminID.String())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
	var resp []CouponResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Len(resp, 2)
	s.Equal("SECOND", resp[0].Code)
	s.Equal("FIRST", resp[1].Code)
}
