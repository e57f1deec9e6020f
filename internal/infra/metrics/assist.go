package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(assistRequests, assistPromptTokens) }

var (
	// status: ok|denied|error
	assistRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_requests_total",
			Help: "Assist proxy calls by status.",
		},
		[]string{"status"},
	)

	assistPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_prompt_tokens_total",
			Help: "Sum of prompt tokens sent to the chat model.",
		},
		[]string{"model"},
	)
)

func IncAssist(status string) {
	assistRequests.WithLabelValues(norm(status)).Inc()
}

func AddAssistPromptTokens(model string, n int) {
	assistPromptTokens.WithLabelValues(norm(model)).Add(float64(n))
}
