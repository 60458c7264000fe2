package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"outbreak-feed/internal/pkg/config"
)

// WorkerMetrics exposes the worker's own Prometheus metrics: the embedded
// configuration metrics plus per-job execution tracking for the two
// scheduled jobs (pipeline and trends).
type WorkerMetrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts scheduled job runs by job name and status.
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures job execution time per job name.
	JobDurationSeconds *prometheus.HistogramVec

	// JobLastSuccessTimestamp records the last successful completion per
	// job name, for staleness alerts.
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// Job names used as the "job" label value.
const (
	JobPipeline = "pipeline"
	JobTrends   = "trends"
)

// NewWorkerMetrics creates the metrics. Registration happens via promauto at
// construction.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled job runs by job and status (success/failure)",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}, []string{"job"}),

		JobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// RecordJobRun increments the run counter for the job. Status is "success"
// or "failure".
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the job's execution time in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordLastSuccess stamps the job's last successful completion with the
// current time.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
