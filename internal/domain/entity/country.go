package entity

import "time"

// ContinentUnknown is the continent recorded for countries created on the fly
// from an extraction. Filling in the real continent is a curation task, not
// something the pipeline guesses at.
const ContinentUnknown = "Unknown"

// Country is the canonical geography record. Created on demand when an
// extraction resolves to a country absent from the store.
type Country struct {
	ID         int64
	Name       string
	Code       string
	Continent  string
	Population int64
	CreatedAt  time.Time
}
