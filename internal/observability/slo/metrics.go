package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for the scheduled pipeline. A batch job's reliability is
// measured per run, not per request.
const (
	// RunSuccessSLO defines the target fraction of scheduled runs that
	// complete without a fatal error.
	RunSuccessSLO = 0.95

	// RunDurationSLO defines the target wall-clock budget for one run.
	// Geocoding rate limits dominate, so the budget is generous.
	RunDurationSLO = 30 * time.Minute

	// FreshnessSLO defines the maximum acceptable age of the newest
	// successful run for a daily schedule (one missed run plus slack).
	FreshnessSLO = 26 * time.Hour
)

// SLO tracking metrics, updated by the worker after each run.
var (
	// SLORunSuccessRatio tracks the rolling success ratio of pipeline runs (0-1).
	SLORunSuccessRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_run_success_ratio",
			Help: "Rolling success ratio of pipeline runs (0-1), target: 0.95",
		},
	)

	// SLORunDurationSeconds tracks the duration of the last completed run.
	SLORunDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_run_duration_seconds",
			Help: "Duration of the last completed pipeline run in seconds, target: under 1800",
		},
	)

	// SLOFreshnessSeconds tracks seconds since the last successful run.
	SLOFreshnessSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_freshness_seconds",
			Help: "Seconds since the last successful pipeline run, target: under 93600",
		},
	)
)

// UpdateRunSuccessRatio updates the rolling run success ratio.
// Callers compute the ratio over their own window (e.g. last 20 runs).
func UpdateRunSuccessRatio(ratio float64) {
	SLORunSuccessRatio.Set(ratio)
}

// UpdateRunDuration records the wall-clock duration of the last run.
func UpdateRunDuration(d time.Duration) {
	SLORunDurationSeconds.Set(d.Seconds())
}

// UpdateFreshness records the age of the newest successful run.
func UpdateFreshness(age time.Duration) {
	SLOFreshnessSeconds.Set(age.Seconds())
}
