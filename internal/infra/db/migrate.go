package db

import (
	"database/sql"
	"fmt"
)

// MigrateUp creates the schema for the given driver if it does not exist.
// Statements are ordered so foreign key targets exist before their referrers.
func MigrateUp(db *sql.DB, driver string) error {
	serial := "SERIAL PRIMARY KEY"
	if driver == DriverSQLite {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS news_sources (
			id %s,
			name TEXT NOT NULL UNIQUE,
			last_crawled_at TIMESTAMP
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS news_articles (
			id %s,
			source_id BIGINT NOT NULL REFERENCES news_sources(id),
			title TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT 'en',
			original_text TEXT NOT NULL DEFAULT '',
			translated_text TEXT NOT NULL DEFAULT '',
			published_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS diseases (
			id %s,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			severity_level TEXT NOT NULL DEFAULT 'medium',
			color_code TEXT NOT NULL DEFAULT '',
			disease_type TEXT NOT NULL DEFAULT 'human',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pathogens (
			id %s,
			name TEXT NOT NULL UNIQUE,
			pathogen_type TEXT NOT NULL DEFAULT ''
		)`, serial),

		`CREATE TABLE IF NOT EXISTS disease_pathogens (
			disease_id BIGINT NOT NULL REFERENCES diseases(id),
			pathogen_id BIGINT NOT NULL REFERENCES pathogens(id),
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (disease_id, pathogen_id)
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS outbreak_categories (
			id %s,
			name TEXT NOT NULL UNIQUE,
			color_code TEXT NOT NULL DEFAULT '',
			severity_level TEXT NOT NULL DEFAULT 'medium'
		)`, serial),

		`CREATE TABLE IF NOT EXISTS disease_categories (
			disease_id BIGINT NOT NULL REFERENCES diseases(id),
			category_id BIGINT NOT NULL REFERENCES outbreak_categories(id),
			PRIMARY KEY (disease_id, category_id)
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS disease_keywords (
			id %s,
			disease_id BIGINT NOT NULL REFERENCES diseases(id),
			keyword TEXT NOT NULL,
			UNIQUE (disease_id, keyword)
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS countries (
			id %s,
			name TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL DEFAULT '',
			continent TEXT NOT NULL DEFAULT 'Unknown',
			population BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS outbreak_signals (
			id %s,
			article_id BIGINT NOT NULL REFERENCES news_articles(id),
			disease_id BIGINT NOT NULL REFERENCES diseases(id),
			country_id BIGINT NOT NULL REFERENCES countries(id),
			city TEXT,
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0.5,
			case_count_mentioned BIGINT,
			severity_assessment TEXT NOT NULL DEFAULT 'low',
			detected_at TIMESTAMP NOT NULL,
			detected_disease_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS disease_trends (
			id %s,
			disease_name TEXT NOT NULL,
			date TEXT NOT NULL,
			trend_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (disease_name, date)
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS disease_trends_regions (
			id %s,
			disease_name TEXT NOT NULL,
			region TEXT NOT NULL,
			country_id BIGINT REFERENCES countries(id),
			date TEXT NOT NULL,
			trend_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (disease_name, region, date)
		)`, serial),

		`CREATE TABLE IF NOT EXISTS pipeline_state (
			key TEXT PRIMARY KEY,
			counter_value BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_news_articles_published_at ON news_articles(published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_news_articles_source_id ON news_articles(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outbreak_signals_window ON outbreak_signals(disease_id, country_id, detected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_outbreak_signals_article ON outbreak_signals(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_disease_keywords_disease ON disease_keywords(disease_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("MigrateUp: %w", err)
		}
	}

	return nil
}
