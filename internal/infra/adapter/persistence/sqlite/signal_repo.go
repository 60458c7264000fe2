package sqlite

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
	WHERE disease_id = ? AND country_id = ? AND detected_at >= ?
)`
	const cityQuery = `
SELECT EXISTS (
	SELECT 1 FROM outbreak_signals
	WHERE disease_id = ? AND country_id = ? AND detected_at >= ? AND city = ?
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
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := repo.db.ExecContext(ctx, query,
		signal.ArticleID, signal.DiseaseID, signal.CountryID, signal.City,
		signal.Latitude, signal.Longitude, signal.ConfidenceScore,
		signal.CaseCountMentioned, signal.SeverityAssessment,
		signal.DetectedAt, signal.DetectedDiseaseName,
	)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("Create: LastInsertId: %w", err)
	}
	return id, nil
}
