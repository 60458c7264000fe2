package entity

import "time"

// Severity tiers assigned to outbreak signals, derived from classifier
// confidence by monotonic bucketing.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// SeverityForConfidence buckets a classifier confidence score into a severity
// tier: >0.9 critical, >0.75 high, >0.6 medium, everything else low.
func SeverityForConfidence(confidence float64) string {
	switch {
	case confidence > 0.9:
		return SeverityCritical
	case confidence > 0.75:
		return SeverityHigh
	case confidence > 0.6:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// SignalAlert is the denormalized view of a signal handed to notification
// channels, carrying the names and article reference so channels never query
// the store.
type SignalAlert struct {
	DiseaseName  string
	CountryName  string
	City         *string
	Severity     string
	Confidence   float64
	CaseCount    *int
	ArticleURL   string
	ArticleTitle string
}

// OutbreakSignal is the terminal output of the pipeline: an assertion that a
// disease was reported in a place at a time, with confidence and severity.
//
// Within a trailing dedup window at most one signal may exist for a given
// (disease, country, city) triple when the city is present, and at most one
// for (disease, country) when it is absent. That window is the system's core
// idempotence guarantee against outbreak-count inflation from re-scraping the
// same event across sources.
type OutbreakSignal struct {
	ID                  int64
	ArticleID           int64
	DiseaseID           int64
	CountryID           int64
	City                *string
	Latitude            float64
	Longitude           float64
	ConfidenceScore     float64
	CaseCountMentioned  *int
	SeverityAssessment  string
	DetectedAt          time.Time
	DetectedDiseaseName string
	CreatedAt           time.Time
}
