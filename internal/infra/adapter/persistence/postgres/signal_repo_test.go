package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/adapter/persistence/postgres"
)

func TestSignalRepo_ExistsRecent_CountryOnly(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	since := time.Date(2026, 7, 25, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`detected_at >= $3`)).
		WithArgs(int64(7), int64(3), since).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := postgres.NewSignalRepo(db)
	exists, err := repo.ExistsRecent(context.Background(), 7, 3, nil, since)
	if err != nil {
		t.Fatalf("ExistsRecent err=%v", err)
	}
	if !exists {
		t.Fatal("ExistsRecent = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSignalRepo_ExistsRecent_WithCity(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	since := time.Date(2026, 7, 25, 0, 0, 0, 0, time.UTC)
	city := "Mumbai"
	mock.ExpectQuery(regexp.QuoteMeta(`city = $4`)).
		WithArgs(int64(7), int64(3), since, city).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	repo := postgres.NewSignalRepo(db)
	exists, err := repo.ExistsRecent(context.Background(), 7, 3, &city, since)
	if err != nil {
		t.Fatalf("ExistsRecent err=%v", err)
	}
	if exists {
		t.Fatal("ExistsRecent = true, want false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSignalRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	city := "Port-au-Prince"
	cases := 120
	signal := &entity.OutbreakSignal{
		ArticleID: 42, DiseaseID: 7, CountryID: 3,
		City: &city, Latitude: 18.59, Longitude: -72.31,
		ConfidenceScore: 0.92, CaseCountMentioned: &cases,
		SeverityAssessment:  entity.SeverityCritical,
		DetectedAt:          time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		DetectedDiseaseName: "",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO outbreak_signals`)).
		WithArgs(signal.ArticleID, signal.DiseaseID, signal.CountryID, signal.City,
			signal.Latitude, signal.Longitude, signal.ConfidenceScore,
			signal.CaseCountMentioned, signal.SeverityAssessment,
			signal.DetectedAt, signal.DetectedDiseaseName).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))

	repo := postgres.NewSignalRepo(db)
	id, err := repo.Create(context.Background(), signal)
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if id != 101 {
		t.Fatalf("Create id=%d, want 101", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
