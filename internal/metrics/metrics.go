// Package metrics holds the Prometheus collectors for the solve pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for SolveTotal.
const (
	OutcomeSolved    = "solved"
	OutcomeRecovered = "recovered"
	OutcomeFailed    = "failed"
)

var (
	// SolveTotal counts solve requests by formula type and outcome.
	SolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "algenova_solve_total",
		Help: "Total solve requests by formula type and outcome",
	}, []string{"type", "outcome"})

	// SolveDuration tracks pipeline latency per formula type.
	SolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "algenova_solve_duration_seconds",
		Help:    "Solve pipeline duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"type"})

	// OracleFailures counts oracle errors by operation, including recovered ones.
	OracleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "algenova_oracle_failures_total",
		Help: "Total symbolic oracle failures by operation",
	}, []string{"operation"})

	// Verifications counts verification records by result.
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "algenova_verification_total",
		Help: "Total verification records by result",
	}, []string{"result"})
)
