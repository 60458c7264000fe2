package completion

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder abstracts completion metrics so tests can substitute a
// recording stub without touching the global Prometheus registry.
type MetricsRecorder interface {
	// RecordDuration records how long one API call took.
	RecordDuration(provider string, duration time.Duration)
	// RecordOutcome records whether one API call succeeded.
	RecordOutcome(provider string, success bool)
	// RecordPromptTruncated records a prompt cut down to the size budget.
	RecordPromptTruncated(provider string)
	// RecordResponseLength records the response size in runes.
	RecordResponseLength(provider string, length int)
}

var (
	metricsOnce sync.Once

	completionDuration  *prometheus.HistogramVec
	completionTotal     *prometheus.CounterVec
	promptTruncatedTotal *prometheus.CounterVec
	responseLength      *prometheus.HistogramVec
)

// PrometheusMetrics records completion metrics to the default registry.
type PrometheusMetrics struct{}

// NewPrometheusMetrics returns the shared Prometheus recorder, registering
// the collectors on first use.
func NewPrometheusMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		completionDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "completion_request_duration_seconds",
				Help:    "Duration of AI completion API calls",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
			[]string{"provider"},
		)
		completionTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_requests_total",
				Help: "AI completion API calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		)
		promptTruncatedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_prompt_truncated_total",
				Help: "Prompts truncated to the configured character budget",
			},
			[]string{"provider"},
		)
		responseLength = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "completion_response_length_runes",
				Help:    "Length of AI completion responses in runes",
				Buckets: prometheus.ExponentialBuckets(64, 2, 12),
			},
			[]string{"provider"},
		)
	})
	return &PrometheusMetrics{}
}

func (p *PrometheusMetrics) RecordDuration(provider string, duration time.Duration) {
	completionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) RecordOutcome(provider string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	completionTotal.WithLabelValues(provider, outcome).Inc()
}

func (p *PrometheusMetrics) RecordPromptTruncated(provider string) {
	promptTruncatedTotal.WithLabelValues(provider).Inc()
}

func (p *PrometheusMetrics) RecordResponseLength(provider string, length int) {
	responseLength.WithLabelValues(provider).Observe(float64(length))
}
