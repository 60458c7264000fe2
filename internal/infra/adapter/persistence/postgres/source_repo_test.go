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

func TestSourceRepo_EnsureByName(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	crawled := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	want := &entity.NewsSource{ID: 5, Name: "WHO Disease Outbreak News", LastCrawledAt: &crawled}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO news_sources`)).
		WithArgs(want.Name).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "last_crawled_at"}).
			AddRow(want.ID, want.Name, want.LastCrawledAt))

	repo := postgres.NewSourceRepo(db)
	got, err := repo.EnsureByName(context.Background(), want.Name)
	if err != nil {
		t.Fatalf("EnsureByName err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_TouchCrawledAt(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE news_sources SET last_crawled_at`)).
		WithArgs(now, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSourceRepo(db)
	if err := repo.TouchCrawledAt(context.Background(), 5, now); err != nil {
		t.Fatalf("TouchCrawledAt err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_TouchCrawledAt_NoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE news_sources SET last_crawled_at`)).
		WithArgs(now, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewSourceRepo(db)
	if err := repo.TouchCrawledAt(context.Background(), 99, now); err == nil {
		t.Fatal("TouchCrawledAt expected error for missing row, got nil")
	}
}
