// Package handler exposes the email dispatch endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"autoquote/internal/email/models"
	"autoquote/internal/email/service"
	"autoquote/internal/platform/middleware"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/httputil"
)

// Service defines the email operations the HTTP layer needs.
type Service interface {
	Dispatch(ctx context.Context, msg models.Message) (*service.DispatchResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/emails", h.HandleDispatch)
}

// DispatchRequest is the POST /emails body. ScheduledFor is optional; a past
// timestamp means "send now".
type DispatchRequest struct {
	To           []string   `json:"to"`
	Subject      string     `json:"subject"`
	HTML         string     `json:"html"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

func (r *DispatchRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	for i := range r.To {
		r.To[i] = strings.TrimSpace(r.To[i])
	}
}

func (r *DispatchRequest) Validate() error {
	if len(r.To) == 0 {
		return dErrors.New(dErrors.CodeValidation, "to is required")
	}
	return nil
}

// DispatchResponse reports whether the message was sent or queued.
type DispatchResponse struct {
	Status      string `json:"status"`
	ScheduledID string `json:"scheduled_id,omitempty"`
}

// HandleDispatch sends or schedules an email. A provider rejection surfaces
// as 500; scheduling problems are the caller's to see, not to guess.
func (h *Handler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DispatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Dispatch(ctx, models.Message{
		To:           req.To,
		Subject:      req.Subject,
		HTML:         req.HTML,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "email dispatch failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}

	resp := DispatchResponse{Status: "sent"}
	if result.Scheduled {
		resp.Status = "scheduled"
		resp.ScheduledID = result.ScheduledID.String()
	}
	httputil.WriteJSON(w, http.StatusOK, &resp)
}
