// Package metrics exposes the process's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liftwise_turns_total",
			Help: "Total number of conversation turns handled, by resolved intent",
		},
		[]string{"intent"},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liftwise_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "liftwise_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "liftwise_llm_call_duration_seconds",
			Help: "LLM completion call duration in seconds",
		},
		[]string{"provider"},
	)

	HevyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "liftwise_hevy_call_duration_seconds",
			Help: "Hevy API call duration in seconds",
		},
		[]string{"method"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "liftwise_active_sessions",
			Help: "Number of sessions with conversation state in memory",
		},
	)
)

// ObserveLLM records one completion call against the named provider.
func ObserveLLM(provider string, d time.Duration) {
	LLMDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveHevy records one Hevy API call by HTTP method.
func ObserveHevy(method string, d time.Duration) {
	HevyDuration.WithLabelValues(method).Observe(d.Seconds())
}
