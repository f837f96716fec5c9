package records

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medchain_submissions_total",
		Help: "Record submissions by the workflow state they ended in.",
	}, []string{"status"})

	anchorAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medchain_anchor_attempts_total",
		Help: "Public anchor outcomes: anchored, degraded, or skipped when already anchored.",
	}, []string{"outcome"})

	anchorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medchain_anchor_duration_seconds",
		Help:    "Latency of public anchor calls.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	})

	reconciledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medchain_reconciled_anchors_total",
		Help: "Pending anchors retried by reconciliation, by outcome.",
	}, []string{"outcome"})
)
