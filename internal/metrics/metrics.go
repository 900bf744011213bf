// Package metrics holds the Prometheus instrumentation for the checkout core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcome label values.
const (
	OutcomeCompleted         = "completed"
	OutcomeProductNotFound   = "product_not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomePaymentFailed     = "payment_failed"
	OutcomePersistenceFailed = "persistence_failed"
	OutcomeInvalidRequest    = "invalid_request"
)

// Metrics bundles the counters and histograms exported by the service.
type Metrics struct {
	CheckoutTotal   *prometheus.CounterVec
	PaymentDuration prometheus.Histogram
	OrderTotalValue prometheus.Histogram
}

// New registers the service metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CheckoutTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		PaymentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shop",
			Subsystem: "checkout",
			Name:      "payment_duration_seconds",
			Help:      "Wall time of the external payment gateway call.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		OrderTotalValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shop",
			Subsystem: "orders",
			Name:      "total_value",
			Help:      "Committed order totals in the store currency.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}
