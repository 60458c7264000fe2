// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track requests against the trigger and health endpoints
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Ingestion metrics track the fetch and dedup stages
var (
	// ArticlesFetchedTotal counts articles fetched from each source
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of articles fetched from sources",
		},
		[]string{"source"},
	)

	// FetchErrorsTotal counts per-source fetch failures
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_errors_total",
			Help: "Total number of source fetch errors",
		},
		[]string{"source", "error_type"},
	)

	// FetchDuration measures time to fetch one source
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Time taken to fetch a source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// ArticlesDeduplicatedTotal counts articles dropped by the URL pre-filter
	ArticlesDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_deduplicated_total",
			Help: "Total number of articles filtered out as already stored",
		},
	)

	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)
)

// Enrichment metrics track translation, classification and geocoding
var (
	// ArticlesTranslatedTotal counts translation outcomes
	ArticlesTranslatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_translated_total",
			Help: "Total number of articles run through translation",
		},
		[]string{"status"},
	)

	// ClassificationCallsTotal counts batch classification calls by provider and outcome
	ClassificationCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_calls_total",
			Help: "Total number of batch classification calls",
		},
		[]string{"provider", "status"},
	)

	// ClassificationDuration measures one batch classification call
	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classification_duration_seconds",
			Help:    "Time taken for a batch classification call",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// ClassificationMatchesTotal counts matches surviving the parser
	ClassificationMatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classification_matches_total",
			Help: "Total number of parsed classification matches",
		},
	)

	// ClassificationLinesDroppedTotal counts malformed output lines by reason
	ClassificationLinesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_lines_dropped_total",
			Help: "Total number of classifier output lines dropped by the parser",
		},
		[]string{"reason"},
	)

	// LocationResolutionsTotal counts resolutions by the tier that decided them
	LocationResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_resolutions_total",
			Help: "Total number of location resolutions by deciding tier",
		},
		[]string{"tier"}, // alias, fold, geocoder, centroid, unresolved
	)

	// GeocodeRequestsTotal counts external geocoder calls by result
	GeocodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Total number of external geocoding requests",
		},
		[]string{"result"},
	)

	// GeocodeDuration measures one geocoder round trip
	GeocodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geocode_duration_seconds",
			Help:    "Time taken for a geocoding request",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

// Storage metrics track the signal store and trends collector
var (
	// ArticlesStoredTotal counts article upserts
	ArticlesStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_stored_total",
			Help: "Total number of articles upserted",
		},
	)

	// SignalsCreatedTotal counts inserted outbreak signals by severity
	SignalsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_created_total",
			Help: "Total number of outbreak signals created",
		},
		[]string{"severity"},
	)

	// SignalsSkippedTotal counts matches that produced no signal
	SignalsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_skipped_total",
			Help: "Total number of matches skipped without creating a signal",
		},
		[]string{"reason"}, // duplicate, no_location, no_disease
	)

	// TrendScoresUpsertedTotal counts trend datapoints written
	TrendScoresUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trend_scores_upserted_total",
			Help: "Total number of search-interest scores upserted",
		},
		[]string{"kind"}, // global, region
	)

	// TrendsErrorsTotal counts interest-provider failures
	TrendsErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trends_errors_total",
			Help: "Total number of search-interest collection errors",
		},
		[]string{"kind"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
