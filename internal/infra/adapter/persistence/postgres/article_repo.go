// Package postgres implements the repository interfaces on PostgreSQL via
// database/sql. Statements use $n placeholders and RETURNING; the sqlite
// package mirrors them for the embedded deployment.
package postgres

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
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (url) DO UPDATE SET
       title           = EXCLUDED.title,
       content         = EXCLUDED.content,
       language        = EXCLUDED.language,
       original_text   = EXCLUDED.original_text,
       translated_text = EXCLUDED.translated_text
RETURNING id`
	var id int64
	err := repo.db.QueryRowContext(ctx, query,
		article.SourceID, article.Title, article.URL, article.Content,
		article.Source, article.Language, article.OriginalText,
		article.TranslatedText, article.PublishedAt, article.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Upsert: %w", err)
	}
	return id, nil
}

// ExistsByURLBatch checks URL existence in one round trip. URLs absent from
// the result map do not exist.
func (repo *ArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}

	placeholders := make([]string, len(urls))
	args := make([]any, len(urls))
	for i, u := range urls {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = u
	}
	query := "SELECT url FROM news_articles WHERE url IN (" + strings.Join(placeholders, ", ") + ")"

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
