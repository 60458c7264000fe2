package metrics

import "time"

// Resolution tier labels recorded by RecordLocationResolution.
const (
	TierAlias      = "alias"
	TierFold       = "fold"
	TierGeocoder   = "geocoder"
	TierCentroid   = "centroid"
	TierUnresolved = "unresolved"
)

// Skip reason labels recorded by RecordSignalSkipped.
const (
	SkipDuplicate  = "duplicate"
	SkipNoLocation = "no_location"
	SkipNoDisease  = "no_disease"
)

// RecordArticlesFetched records the number of articles fetched from a source.
func RecordArticlesFetched(source string, count int) {
	ArticlesFetchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordFetchError records a per-source fetch failure.
// errorType is a coarse class such as "network", "parse" or "http".
func RecordFetchError(source, errorType string) {
	FetchErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// RecordFetchDuration records the time taken to fetch one source.
func RecordFetchDuration(source string, duration time.Duration) {
	FetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordArticlesDeduplicated records articles dropped by the URL pre-filter.
func RecordArticlesDeduplicated(count int) {
	ArticlesDeduplicatedTotal.Add(float64(count))
}

// RecordTranslation records one article's translation outcome.
func RecordTranslation(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ArticlesTranslatedTotal.WithLabelValues(status).Inc()
}

// RecordClassificationCall records one batch classification call.
func RecordClassificationCall(provider string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	ClassificationCallsTotal.WithLabelValues(provider, status).Inc()
	ClassificationDuration.Observe(duration.Seconds())
}

// RecordClassificationMatches records how many matches a batch yielded after
// parsing.
func RecordClassificationMatches(count int) {
	ClassificationMatchesTotal.Add(float64(count))
}

// RecordClassificationLineDropped records a classifier output line the parser
// had to discard.
func RecordClassificationLineDropped(reason string) {
	ClassificationLinesDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordLocationResolution records which tier decided a resolution attempt,
// TierUnresolved when none did.
func RecordLocationResolution(tier string) {
	LocationResolutionsTotal.WithLabelValues(tier).Inc()
}

// RecordGeocodeRequest records one external geocoder round trip.
func RecordGeocodeRequest(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	GeocodeRequestsTotal.WithLabelValues(result).Inc()
	GeocodeDuration.Observe(duration.Seconds())
}

// RecordArticleStored records one article upsert.
func RecordArticleStored() {
	ArticlesStoredTotal.Inc()
}

// RecordSignalCreated records an inserted outbreak signal.
func RecordSignalCreated(severity string) {
	SignalsCreatedTotal.WithLabelValues(severity).Inc()
}

// RecordSignalSkipped records a match that produced no signal.
func RecordSignalSkipped(reason string) {
	SignalsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordTrendScores records upserted interest datapoints.
// kind is "global" or "region".
func RecordTrendScores(kind string, count int) {
	TrendScoresUpsertedTotal.WithLabelValues(kind).Add(float64(count))
}

// RecordTrendsError records a search-interest collection failure.
func RecordTrendsError(kind string) {
	TrendsErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordContentFetchSuccess records a successful content fetch, tracking
// duration of the upgrade attempt.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch. This occurs when
// feed content is already long enough and fetching is unnecessary.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "upsert_article", "create_signal").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
