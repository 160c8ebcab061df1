// Package httptransport assembles the HTTP surface: middleware stack, public
// routes, and the authenticated and admin route groups. It should delegate to
// domain handlers without embedding business logic so transport concerns
// remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"autoquote/internal/billing"
	couponhandler "autoquote/internal/coupon/handler"
	emailhandler "autoquote/internal/email/handler"
	identityhandler "autoquote/internal/identity/handler"
	"autoquote/internal/platform/health"
	"autoquote/internal/platform/middleware"
	quotehandler "autoquote/internal/quote/handler"
)

// Deps collects everything the router mounts. Health and Billing may be nil
// when the corresponding subsystem is not configured.
type Deps struct {
	Identity *identityhandler.Handler
	Quotes   *quotehandler.Handler
	Coupons  *couponhandler.Handler
	Emails   *emailhandler.Handler
	Billing  *billing.Handler
	Health   *health.Handler

	JWT   middleware.JWTValidator
	Roles middleware.RoleLookup
}

// NewRouter wires all endpoints behind the shared middleware stack.
//
// Route groups:
//   - public: health probes, /metrics, sign-in, password reset, billing webhook
//   - authenticated: everything behind a valid bearer token
//   - admin: coupon management, gated on the persisted role only
func NewRouter(deps Deps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	deps.Identity.Register(r)
	if deps.Billing != nil {
		deps.Billing.Register(r)
	}

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(deps.JWT, logger))

		deps.Identity.RegisterProtected(protected)
		deps.Quotes.Register(protected)
		deps.Emails.Register(protected)

		protected.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(deps.Roles, logger))
			deps.Coupons.Register(admin)
		})
	})

	return r
}
