package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ppr",
			Subsystem: "ipn",
			Name:      "notifications_total",
			Help:      "Processed IPN notifications by payment status and outcome",
		},
		[]string{"payment_status", "outcome"},
	)

	VerifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ppr",
			Subsystem: "ipn",
			Name:      "verify_duration_seconds",
			Help:      "Latency of the PayPal verification postback",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)

	RefundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ppr",
			Subsystem: "refund",
			Name:      "requests_total",
			Help:      "Outbound refund executions by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(NotificationsTotal, VerifyDuration, RefundsTotal)
}
