package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/adapter/persistence/postgres"
)

func countryRow(c *entity.Country) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "code", "continent", "population", "created_at",
	}).AddRow(
		c.ID, c.Name, c.Code, c.Continent, c.Population, c.CreatedAt,
	)
}

func TestCountryRepo_GetByName(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := &entity.Country{
		ID: 3, Name: "Haiti", Code: "HT", Continent: "North America",
		Population: 11_500_000,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM countries`)).
		WithArgs("Haiti").
		WillReturnRows(countryRow(want))

	repo := postgres.NewCountryRepo(db)
	got, err := repo.GetByName(context.Background(), "Haiti")
	if err != nil {
		t.Fatalf("GetByName err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCountryRepo_GetByName_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM countries`)).
		WithArgs("Atlantis").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "code", "continent", "population", "created_at",
		}))

	repo := postgres.NewCountryRepo(db)
	got, err := repo.GetByName(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("GetByName err=%v", err)
	}
	if got != nil {
		t.Fatalf("GetByName = %+v, want nil for missing row", got)
	}
}

func TestCountryRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	country := &entity.Country{Name: "Haiti", Code: "HT", Continent: "North America"}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO countries`)).
		WithArgs(country.Name, country.Code, country.Continent, country.Population).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	repo := postgres.NewCountryRepo(db)
	id, err := repo.Create(context.Background(), country)
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if id != 3 {
		t.Fatalf("Create id=%d, want 3", id)
	}
}
