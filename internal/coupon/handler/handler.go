// Package handler exposes the admin coupon endpoints. Both routes sit behind
// the admin-role middleware; see the router for the gate wiring.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"autoquote/internal/coupon/models"
	"autoquote/internal/coupon/service"
	"autoquote/internal/platform/middleware"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/httputil"

	"github.com/google/uuid"
)

// Service defines the coupon operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, cmd service.CreateCommand) (*models.Coupon, error)
	List(ctx context.Context) ([]*models.Coupon, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/coupons", h.HandleCreate)
	r.Get("/admin/coupons", h.HandleList)
}

// CreateCouponRequest is the POST /admin/coupons body.
type CreateCouponRequest struct {
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	UsageLimit    int        `json:"usage_limit,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func (r *CreateCouponRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)
	r.DiscountType = strings.ToLower(strings.TrimSpace(r.DiscountType))
}

// CouponResponse is a coupon over HTTP.
type CouponResponse struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	UsageLimit    int        `json:"usage_limit,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toCouponResponse(c *models.Coupon) CouponResponse {
	return CouponResponse{
		ID:            c.ID.String(),
		Code:          c.Code,
		Name:          c.Name,
		Description:   c.Description,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		UsageLimit:    c.UsageLimit,
		ExpiresAt:     c.ExpiresAt,
		CreatedAt:     c.CreatedAt,
	}
}

// HandleCreate creates a coupon. Field validation happens in the service so
// the missing-fields message is produced in one place.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	createdBy, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateCouponRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	coupon, err := h.service.Create(ctx, service.CreateCommand{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		DiscountType:  models.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		UsageLimit:    req.UsageLimit,
		ExpiresAt:     req.ExpiresAt,
		CreatedBy:     createdBy,
	})
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "create coupon failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}

	resp := toCouponResponse(coupon)
	httputil.WriteJSON(w, http.StatusOK, &resp)
}

// HandleList returns all coupons, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	coupons, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list coupons failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	out := make([]CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, toCouponResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
