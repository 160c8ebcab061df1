package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for identity operations.
type Metrics struct {
	SignIns             prometheus.Counter
	SignInFailures      prometheus.Counter
	ActiveSessions      prometheus.Gauge
	RoleResolutions     *prometheus.CounterVec
	RoleCacheHits       prometheus.Counter
	RoleCacheMisses     prometheus.Counter
	RoleQueryRetries    prometheus.Counter
	ResolveDurationMs   prometheus.Histogram
	PasswordResetsSent  prometheus.Counter
	ViewModeOverrides   *prometheus.CounterVec
}

// New registers and returns identity metrics collectors.
func New() *Metrics {
	return &Metrics{
		SignIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_sign_ins_total",
			Help: "Total number of successful sign-ins",
		}),
		SignInFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_sign_in_failures_total",
			Help: "Total number of failed sign-in attempts",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "autoquote_active_sessions",
			Help: "Current number of active sessions",
		}),
		RoleResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "autoquote_role_resolutions_total",
			Help: "Total number of role resolutions by effective role",
		}, []string{"role"}),
		RoleCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_role_cache_hits_total",
			Help: "Total number of role resolutions served from cache",
		}),
		RoleCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_role_cache_misses_total",
			Help: "Total number of role resolutions that missed the cache",
		}),
		RoleQueryRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_role_query_retries_total",
			Help: "Total number of role query retries (single-retry budget)",
		}),
		ResolveDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoquote_role_resolve_duration_ms",
			Help:    "Duration of role resolution in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		PasswordResetsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_password_resets_sent_total",
			Help: "Total number of password reset emails dispatched",
		}),
		ViewModeOverrides: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "autoquote_view_mode_overrides_total",
			Help: "Total number of role resolutions where a view-mode override applied",
		}, []string{"view_mode"}),
	}
}
