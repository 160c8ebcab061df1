package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	"autoquote/internal/identity/service"
	"autoquote/internal/platform/middleware"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/httputil"
)

// ViewModeHeader carries the per-request role preview toggle. It is an
// explicit input to resolution, never ambient state, and it grants nothing:
// the admin gate reads the persisted role only.
const ViewModeHeader = "X-View-Mode"

// Service defines the identity operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	SignIn(ctx context.Context, cmd service.SignInCommand) (*service.SignInResult, error)
	SignOut(ctx context.Context, sessionID uuid.UUID) error
	RequestPasswordReset(ctx context.Context, email, redirectURL string) error
	Resolve(ctx context.Context, sessionID uuid.UUID, viewMode models.ViewMode) (*models.Resolution, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public auth endpoints. Authenticated endpoints are
// mounted separately via RegisterProtected so the router can wrap them in
// the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/sign-in", h.HandleSignIn)
	r.Post("/auth/password-reset", h.HandlePasswordReset)
}

func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/sign-out", h.HandleSignOut)
	r.Get("/me", h.HandleMe)
}

// HandleSignIn authenticates credentials and mints an access token.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SignInRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SignIn(ctx, service.SignInCommand{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.ErrorContext(ctx, "sign-in failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &SignInResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.Session.ExpiresAt,
		SessionID:   result.Session.ID.String(),
		User:        *toUserResponse(result.User),
	})
}

// HandleSignOut revokes the session carried by the access token.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	sessionID, err := uuid.Parse(middleware.GetSessionID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing session"))
		return
	}

	if err := h.service.SignOut(ctx, sessionID); err != nil {
		h.logger.ErrorContext(ctx, "sign-out failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandlePasswordReset dispatches a reset email. The response does not reveal
// whether the address exists.
func (h *Handler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PasswordResetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.RequestPasswordReset(ctx, req.Email, req.RedirectURL); err != nil {
		h.logger.ErrorContext(ctx, "password reset failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// HandleMe resolves the caller's effective role and profile. The X-View-Mode
// header requests a role preview for this response only.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	sessionID, err := uuid.Parse(middleware.GetSessionID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing session"))
		return
	}
	viewMode := models.ParseViewMode(r.Header.Get(ViewModeHeader))

	res, err := h.service.Resolve(ctx, sessionID, viewMode)
	if err != nil {
		h.logger.ErrorContext(ctx, "role resolution failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toMeResponse(res))
}
