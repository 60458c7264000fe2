package entity

import "time"

// Disease is the canonical disease record persisted in the store. Created
// lazily on first encounter; later encounters reuse the row and only backfill
// a missing category link.
type Disease struct {
	ID            int64
	Name          string
	Description   string
	SeverityLevel string
	ColorCode     string
	DiseaseType   DiseaseType
	CreatedAt     time.Time
}

// Pathogen is a causative agent linked many-to-many with diseases.
type Pathogen struct {
	ID           int64
	Name         string
	PathogenType string
}

// OutbreakCategory groups diseases for display. The color is assigned
// deterministically from a fixed palette so it does not churn across runs.
type OutbreakCategory struct {
	ID            int64
	Name          string
	ColorCode     string
	SeverityLevel string
}
