package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		reconcileResults,
		reconcileDuration,
		orgActivationsTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment records by status transition (pending/succeeded/canceled/failed).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of successful payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	// result: succeeded|pending|failed|error
	// source: webhook|return|reconciler
	reconcileResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reconcile_total",
			Help: "Reconciliation engine invocations by source and result.",
		},
		[]string{"source", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_reconcile_duration_seconds",
			Help:    "Duration of one reconciliation including the gateway call.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	orgActivationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "org_activations_total",
			Help: "Organizations whose payment flag was flipped by reconciliation.",
		},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amountKopecks int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amountKopecks))
}

func IncReconcile(source, result string) {
	reconcileResults.WithLabelValues(norm(source), norm(result)).Inc()
}

func ObserveReconcile(result string, seconds float64) {
	reconcileDuration.WithLabelValues(norm(result)).Observe(seconds)
}

func IncOrgActivation() { orgActivationsTotal.Inc() }
