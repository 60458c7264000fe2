package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/repository"
)

type SignalRepo struct{ db *sql.DB }

func NewSignalRepo(db *sql.DB) repository.SignalRepository {
	return &SignalRepo{db: db}
}

// ExistsRecent reports whether a signal for the disease and country was
// detected at or after since. With a city the check matches that exact city
// only; without one, any row for the pair counts.
func (repo *SignalRepo) ExistsRecent(ctx context.Context, diseaseID, countryID int64, city *string, since time.Time) (bool, error) {
	const countryQuery = `
SELECT EXISTS (
	SELECT 1 FROM outbreak_signals
	WHERE disease_id = $1 AND country_id = $2 AND detected_at >= $3
)`
	const cityQuery = `
SELECT EXISTS (
	SELECT 1 FROM outbreak_signals
	WHERE disease_id = $1 AND country_id = $2 AND detected_at >= $3 AND city = $4
)`

	var exists bool
	var err error
	if city == nil {
		err = repo.db.QueryRowContext(ctx, countryQuery, diseaseID, countryID, since).Scan(&exists)
	} else {
		err = repo.db.QueryRowContext(ctx, cityQuery, diseaseID, countryID, since, *city).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("ExistsRecent: %w", err)
	}
	return exists, nil
}

func (repo *SignalRepo) Create(ctx context.Context, signal *entity.OutbreakSignal) (int64, error) {
	const query = `
INSERT INTO outbreak_signals
       (article_id, disease_id, country_id, city, latitude, longitude,
        confidence_score, case_count_mentioned, severity_assessment,
        detected_at, detected_disease_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`
	var id int64
	err := repo.db.QueryRowContext(ctx, query,
		signal.ArticleID, signal.DiseaseID, signal.CountryID, signal.City,
		signal.Latitude, signal.Longitude, signal.ConfidenceScore,
		signal.CaseCountMentioned, signal.SeverityAssessment,
		signal.DetectedAt, signal.DetectedDiseaseName,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}
