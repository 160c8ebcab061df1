package billing

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"autoquote/internal/platform/middleware"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/httputil"
)

// Handler terminates the payment-processor webhook. It is stateless across
// invocations; everything it needs arrives in the request.
type Handler struct {
	service   *Service
	secret    []byte
	tolerance time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithTolerance overrides the signature timestamp tolerance.
func WithTolerance(tolerance time.Duration) HandlerOption {
	return func(h *Handler) {
		if tolerance > 0 {
			h.tolerance = tolerance
		}
	}
}

// WithHandlerClock overrides the handler clock for tests.
func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func NewHandler(service *Service, secret []byte, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:   service,
		secret:    secret,
		tolerance: DefaultTolerance,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/webhooks/billing", h.HandleWebhook)
}

// HandleWebhook verifies the signature and applies the event. Both an invalid
// signature and a processing failure answer 400: the processor treats 4xx as
// "do not retry with the same payload", which is right for both cases.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable payload"))
		return
	}

	if err := VerifySignature(h.secret, payload, r.Header.Get(SignatureHeader), h.now(), h.tolerance); err != nil {
		h.logger.WarnContext(ctx, "webhook signature rejected", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid signature"))
		return
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed event payload"))
		return
	}

	if err := h.service.HandleEvent(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "webhook processing failed",
			"error", err, "event_type", event.Type, "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event processing failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
