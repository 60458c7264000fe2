// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Ingestion metrics (per-source fetches, dedup, content upgrades)
//   - Enrichment metrics (translation, classification, geocoding)
//   - Storage metrics (articles, signals, trend scores)
//   - HTTP and database metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "outbreak-feed/internal/observability/metrics"
//
//	func fetchSource(source string) {
//	    start := time.Now()
//	    // ... fetch ...
//	    metrics.RecordArticlesFetched(source, 10)
//	    metrics.RecordFetchDuration(source, time.Since(start))
//	}
package metrics
