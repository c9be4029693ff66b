// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pagecrafter"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path"},
	)

	// ExtractionOutcomes counts terminal extraction outcomes per pipeline.
	ExtractionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_outcomes_total",
			Help:      "Extraction results by pipeline and outcome (success, degraded, absent)",
		},
		[]string{"pipeline", "outcome"},
	)

	// GenerationDuration measures the model call plus extraction.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time from opening the model stream to a composed result",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"pipeline"},
	)

	// GenerationFailures counts request-level generation failures by reason.
	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Generation requests that failed before producing a result",
		},
		[]string{"pipeline", "reason"},
	)

	// RateLimitRejections counts requests refused by the local rate limiter.
	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the generation rate limiter",
		},
	)
)
