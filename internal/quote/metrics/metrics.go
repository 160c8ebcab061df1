// Package metrics exposes Prometheus metrics for the quote module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Lists                prometheus.Counter
	ListFailures         prometheus.Counter
	DroppedRecords       prometheus.Counter
	QuotesCreated        prometheus.Counter
	DealerResponses      prometheus.Counter
	DealerQuotesAccepted prometheus.Counter
	ListDurationMs       prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Lists: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_quote_lists_total",
			Help: "Quote list operations.",
		}),
		ListFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_quote_list_failures_total",
			Help: "Quote list operations that failed.",
		}),
		DroppedRecords: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_quote_dropped_records_total",
			Help: "Quote records excluded by car-details validation.",
		}),
		QuotesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_quote_created_total",
			Help: "Quotes created.",
		}),
		DealerResponses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_quote_dealer_responses_total",
			Help: "Dealer responses recorded.",
		}),
		DealerQuotesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "autoquote_quote_dealer_accepted_total",
			Help: "Dealer quotes accepted by buyers.",
		}),
		ListDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoquote_quote_list_duration_ms",
			Help:    "Latency of quote list operations in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}
