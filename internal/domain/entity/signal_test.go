package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeverityForConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		expected   string
	}{
		{name: "well above critical threshold", confidence: 0.98, expected: SeverityCritical},
		{name: "just above critical threshold", confidence: 0.91, expected: SeverityCritical},
		{name: "exactly 0.9 is high not critical", confidence: 0.9, expected: SeverityHigh},
		{name: "mid high bucket", confidence: 0.8, expected: SeverityHigh},
		{name: "exactly 0.75 is medium not high", confidence: 0.75, expected: SeverityMedium},
		{name: "mid medium bucket", confidence: 0.65, expected: SeverityMedium},
		{name: "exactly 0.6 is low", confidence: 0.6, expected: SeverityLow},
		{name: "classifier default confidence", confidence: 0.5, expected: SeverityLow},
		{name: "zero confidence", confidence: 0, expected: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeverityForConfidence(tt.confidence))
		})
	}
}

func TestOutbreakSignal_ZeroValue(t *testing.T) {
	var signal OutbreakSignal

	assert.Equal(t, int64(0), signal.ArticleID)
	assert.Nil(t, signal.City)
	assert.Nil(t, signal.CaseCountMentioned)
	assert.Equal(t, "", signal.SeverityAssessment)
	assert.True(t, signal.DetectedAt.IsZero())
}

func TestOutbreakSignal_WithAllFields(t *testing.T) {
	city := "Jalisco"
	cases := 42
	detectedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	signal := OutbreakSignal{
		ID:                 7,
		ArticleID:          3,
		DiseaseID:          5,
		CountryID:          9,
		City:               &city,
		Latitude:           20.6597,
		Longitude:          -103.3496,
		ConfidenceScore:    0.8,
		CaseCountMentioned: &cases,
		SeverityAssessment: SeverityHigh,
		DetectedAt:         detectedAt,
	}

	assert.Equal(t, "Jalisco", *signal.City)
	assert.Equal(t, 42, *signal.CaseCountMentioned)
	assert.Equal(t, SeverityHigh, signal.SeverityAssessment)
	assert.Equal(t, detectedAt, signal.DetectedAt)
}
