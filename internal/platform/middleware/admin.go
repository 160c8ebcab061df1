package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// RoleLookup resolves the persisted role for a user. The view-mode override
// never flows through here: admin gating is decided on stored data only.
type RoleLookup interface {
	PersistedRole(ctx context.Context, userID string) (string, error)
}

// RequireAdmin rejects requests whose authenticated user does not hold the
// admin role. It must run after RequireAuth. Failed checks answer 400 with an
// admin_access_required body, matching what the dashboard client expects.
func RequireAdmin(roles RoleLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := GetUserID(ctx)
			if userID == "" {
				unauthorized(w, logger, r, "missing bearer token")
				return
			}

			role, err := roles.PersistedRole(ctx, userID)
			if err != nil {
				logger.ErrorContext(ctx, "role lookup failed",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal_error"}`))
				return
			}
			if role != "admin" {
				logger.WarnContext(ctx, "admin access denied",
					"user_id", userID,
					"role", role,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"admin_access_required","error_description":"Admin access required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
