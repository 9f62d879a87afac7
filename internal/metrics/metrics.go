// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Requests counts API requests by endpoint and outcome.
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "car_cost_forecast",
			Name:      "requests_total",
			Help:      "API requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	// CalculationErrors counts rejected projections by error kind.
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "car_cost_forecast",
			Name:      "calculation_errors_total",
			Help:      "Projection and schedule failures by error kind.",
		},
		[]string{"endpoint", "kind"},
	)

	// CalculationDuration observes how long projections take.
	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "car_cost_forecast",
			Name:      "calculation_duration_seconds",
			Help:      "Time spent computing projections and schedules.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"endpoint"},
	)

	// PresetOperations counts preset store calls by operation and outcome.
	PresetOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "car_cost_forecast",
			Name:      "preset_operations_total",
			Help:      "Preset store operations by operation and status.",
		},
		[]string{"operation", "status"},
	)
)
