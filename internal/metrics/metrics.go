// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finchat_generation_requests_total",
			Help: "Generation calls by provider, phase and outcome",
		},
		[]string{"provider", "phase", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finchat_generation_duration_seconds",
			Help:    "Latency of generation calls including retries",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"provider", "phase"},
	)

	GenerationTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finchat_generation_tokens_total",
			Help: "Tokens consumed by generation calls",
		},
		[]string{"provider", "direction"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finchat_classifications_total",
			Help: "Questions classified, by category",
		},
		[]string{"category"},
	)

	MalformedOutputs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finchat_malformed_outputs_total",
			Help: "Generation outputs that could not be parsed",
		},
		[]string{"phase"},
	)

	PromptBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finchat_prompt_builds_total",
			Help: "Prompts filled, by category and tier",
		},
		[]string{"category", "tier"},
	)

	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "finchat_circuit_state",
			Help: "Breaker state per provider (0 closed, 1 open, 2 half-open)",
		},
		[]string{"provider"},
	)
)

// Outcome statuses for GenerationRequests.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusCircuitOpen = "circuit_open"
)

// ObserveGeneration records one finished generation call.
func ObserveGeneration(provider, phase, status string, elapsed time.Duration) {
	GenerationRequests.WithLabelValues(provider, phase, status).Inc()
	GenerationDuration.WithLabelValues(provider, phase).Observe(elapsed.Seconds())
}

// AddTokens records token usage for provider.
func AddTokens(provider string, input, output int64) {
	GenerationTokens.WithLabelValues(provider, "input").Add(float64(input))
	GenerationTokens.WithLabelValues(provider, "output").Add(float64(output))
}
