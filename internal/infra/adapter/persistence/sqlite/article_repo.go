// Package sqlite mirrors the postgres repositories for the embedded
// deployment. SQLite has no RETURNING support guarantee across driver
// versions, so inserts that need the row ID re-read it with a follow-up
// SELECT or LastInsertId.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/repository"
)

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

// Upsert inserts the article, or refreshes the mutable columns when a row
// with the same URL already exists. The row ID is returned either way.
func (repo *ArticleRepo) Upsert(ctx context.Context, article *entity.Article) (int64, error) {
	const query = `
INSERT INTO news_articles
       (source_id, title, url, content, source, language, original_text, translated_text, published_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO UPDATE SET
       title           = excluded.title,
       content         = excluded.content,
       language        = excluded.language,
       original_text   = excluded.original_text,
       translated_text = excluded.translated_text`
	_, err := repo.db.ExecContext(ctx, query,
		article.SourceID, article.Title, article.URL, article.Content,
		article.Source, article.Language, article.OriginalText,
		article.TranslatedText, article.PublishedAt, article.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("Upsert: ExecContext: %w", err)
	}

	// LastInsertId is unreliable on the conflict path, so read the id back.
	const idQuery = `SELECT id FROM news_articles WHERE url = ? LIMIT 1`
	var id int64
	if err := repo.db.QueryRowContext(ctx, idQuery, article.URL).Scan(&id); err != nil {
		return 0, fmt.Errorf("Upsert: Scan: %w", err)
	}
	return id, nil
}

// ExistsByURLBatch checks URL existence in one round trip. URLs absent from
// the result map do not exist.
func (repo *ArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(urls)), ", ")
	args := make([]any, len(urls))
	for i, u := range urls {
		args[i] = u
	}
	query := "SELECT url FROM news_articles WHERE url IN (" + placeholders + ")"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool, len(urls))
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: Scan: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: rows.Err: %w", err)
	}
	return result, nil
}
