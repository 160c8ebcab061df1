package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autoquote/internal/platform/middleware"
	"autoquote/internal/quote/models"
	"autoquote/internal/quote/service"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/httputil"
)

// Service defines the quote operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	ListForUser(ctx context.Context, userID *uuid.UUID) (*models.ListResult, error)
	Create(ctx context.Context, cmd service.CreateQuoteCommand) (*models.Quote, error)
	Respond(ctx context.Context, cmd service.RespondCommand) (*models.DealerQuote, error)
	Accept(ctx context.Context, userID, quoteID, dealerQuoteID uuid.UUID) (*models.DealerQuote, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/quotes", h.HandleList)
	r.Post("/quotes", h.HandleCreate)
	r.Post("/quotes/{id}/responses", h.HandleRespond)
	r.Post("/quotes/{id}/responses/{responseID}/accept", h.HandleAccept)
}

// HandleList returns the caller's quotes, newest first. An unauthenticated
// context yields an empty list rather than an error; the service's nil-user
// guard owns that behavior.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var userID *uuid.UUID
	if parsed, err := uuid.Parse(middleware.GetUserID(ctx)); err == nil {
		userID = &parsed
	}

	result, err := h.service.ListForUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list quotes failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListResponse(result))
}

// HandleCreate opens a new quote request for the caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateQuoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	quote, err := h.service.Create(ctx, service.CreateQuoteCommand{
		UserID:     userID,
		CarDetails: req.CarDetails,
	})
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "create quote failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}

	resp := toQuoteResponse(quote)
	httputil.WriteJSON(w, http.StatusCreated, &resp)
}

// HandleRespond records the caller's dealer offer on a quote.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	dealerID, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid quote id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RespondRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	dq, err := h.service.Respond(ctx, service.RespondCommand{
		QuoteID:       quoteID,
		DealerID:      dealerID,
		PriceCents:    req.PriceCents,
		ResponseNotes: req.ResponseNotes,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "dealer response failed", "error", err, "request_id", requestID, "quote_id", quoteID)
		httputil.WriteError(w, err)
		return
	}

	resp := toDealerQuoteResponse(dq)
	httputil.WriteJSON(w, http.StatusCreated, &resp)
}

// HandleAccept marks a dealer quote as the buyer's choice.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid quote id"))
		return
	}
	responseID, err := uuid.Parse(chi.URLParam(r, "responseID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid response id"))
		return
	}

	dq, err := h.service.Accept(ctx, userID, quoteID, responseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "accept dealer quote failed", "error", err, "request_id", requestID, "quote_id", quoteID)
		httputil.WriteError(w, err)
		return
	}

	resp := toDealerQuoteResponse(dq)
	httputil.WriteJSON(w, http.StatusOK, &resp)
}
