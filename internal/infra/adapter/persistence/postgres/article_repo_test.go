package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/adapter/persistence/postgres"
)

func TestArticleRepo_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	article := &entity.Article{
		SourceID:    3,
		Title:       "Cholera outbreak reported in Haiti",
		URL:         "https://example.org/cholera-haiti",
		Content:     "Health officials confirmed dozens of cases.",
		Source:      "Example News",
		Language:    "en",
		PublishedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO news_articles`)).
		WithArgs(article.SourceID, article.Title, article.URL, article.Content,
			article.Source, article.Language, article.OriginalText,
			article.TranslatedText, article.PublishedAt, article.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	repo := postgres.NewArticleRepo(db)
	id, err := repo.Upsert(context.Background(), article)
	if err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if id != 42 {
		t.Fatalf("Upsert id=%d, want 42", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Upsert_Error(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO news_articles`)).
		WillReturnError(errors.New("connection refused"))

	repo := postgres.NewArticleRepo(db)
	if _, err := repo.Upsert(context.Background(), &entity.Article{URL: "https://x.example"}); err == nil {
		t.Fatal("Upsert expected error, got nil")
	}
}

func TestArticleRepo_ExistsByURLBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	urls := []string{
		"https://example.org/a",
		"https://example.org/b",
		"https://example.org/c",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT url FROM news_articles WHERE url IN ($1, $2, $3)`)).
		WithArgs(urls[0], urls[1], urls[2]).
		WillReturnRows(sqlmock.NewRows([]string{"url"}).AddRow(urls[1]))

	repo := postgres.NewArticleRepo(db)
	got, err := repo.ExistsByURLBatch(context.Background(), urls)
	if err != nil {
		t.Fatalf("ExistsByURLBatch err=%v", err)
	}
	if len(got) != 1 || !got[urls[1]] {
		t.Fatalf("ExistsByURLBatch = %v, want only %q", got, urls[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_ExistsByURLBatch_Empty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := postgres.NewArticleRepo(db)
	got, err := repo.ExistsByURLBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExistsByURLBatch err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ExistsByURLBatch = %v, want empty map", got)
	}
}
