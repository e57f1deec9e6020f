package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(webhookRequests) }

// outcome: rejected_ip|bad_json|missing_id|not_found|already_processed|processed|gateway_error
var webhookRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_webhook_requests_total",
		Help: "Gateway webhook deliveries by decision branch.",
	},
	[]string{"outcome"},
)

func IncWebhook(outcome string) {
	webhookRequests.WithLabelValues(norm(outcome)).Inc()
}
