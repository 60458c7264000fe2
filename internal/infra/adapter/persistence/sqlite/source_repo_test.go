package sqlite_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"outbreak-feed/internal/infra/adapter/persistence/sqlite"
)

func TestSourceRepo_EnsureByName_InsertsThenReads(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT OR IGNORE INTO news_sources`)).
		WithArgs("ProMED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM news_sources`)).
		WithArgs("ProMED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "last_crawled_at"}).
			AddRow(int64(2), "ProMED", nil))

	repo := sqlite.NewSourceRepo(db)
	got, err := repo.EnsureByName(context.Background(), "ProMED")
	if err != nil {
		t.Fatalf("EnsureByName err=%v", err)
	}
	if got.ID != 2 || got.Name != "ProMED" || got.LastCrawledAt != nil {
		t.Fatalf("EnsureByName = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
