package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Statements in execution order, as regexp fragments for sqlmock.
var migrationPatterns = []string{
	"CREATE TABLE IF NOT EXISTS news_sources",
	"CREATE TABLE IF NOT EXISTS news_articles",
	"CREATE TABLE IF NOT EXISTS diseases",
	"CREATE TABLE IF NOT EXISTS pathogens",
	"CREATE TABLE IF NOT EXISTS disease_pathogens",
	"CREATE TABLE IF NOT EXISTS outbreak_categories",
	"CREATE TABLE IF NOT EXISTS disease_categories",
	"CREATE TABLE IF NOT EXISTS disease_keywords",
	"CREATE TABLE IF NOT EXISTS countries",
	"CREATE TABLE IF NOT EXISTS outbreak_signals",
	"CREATE TABLE IF NOT EXISTS disease_trends",
	"CREATE TABLE IF NOT EXISTS disease_trends_regions",
	"CREATE TABLE IF NOT EXISTS pipeline_state",
	"CREATE INDEX IF NOT EXISTS idx_news_articles_published_at",
	"CREATE INDEX IF NOT EXISTS idx_news_articles_source_id",
	"CREATE INDEX IF NOT EXISTS idx_outbreak_signals_window",
	"CREATE INDEX IF NOT EXISTS idx_outbreak_signals_article",
	"CREATE INDEX IF NOT EXISTS idx_disease_keywords_disease",
}

func TestMigrateUp_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, pattern := range migrationPatterns {
		mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	err = MigrateUp(db, DriverPostgres)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_FirstTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS news_sources").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(db, DriverPostgres)
	assert.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_SignalsTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// Everything before outbreak_signals succeeds
	for _, pattern := range migrationPatterns[:9] {
		mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS outbreak_signals").
		WillReturnError(sql.ErrTxDone)

	err = MigrateUp(db, DriverPostgres)
	assert.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrTxDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_IndexError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, pattern := range migrationPatterns[:13] {
		mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_news_articles_published_at").
		WillReturnError(sql.ErrNoRows)

	err = MigrateUp(db, DriverPostgres)
	assert.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMigrateUp_SQLite runs the migration against a real on-disk database and
// verifies the constraints the pipeline relies on: URL uniqueness for
// deduplication and idempotent re-runs.
func TestMigrateUp_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate_test.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, MigrateUp(db, DriverSQLite))
	// Second run must be a no-op
	require.NoError(t, MigrateUp(db, DriverSQLite))

	res, err := db.Exec(`INSERT INTO news_sources (name) VALUES ('who-outbreak-news')`)
	require.NoError(t, err)
	sourceID, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Greater(t, sourceID, int64(0))

	_, err = db.Exec(
		`INSERT INTO news_articles (source_id, title, url, published_at) VALUES (?, ?, ?, ?)`,
		sourceID, "Cholera cases rise in coastal region", "https://example.org/articles/1", time.Now().UTC(),
	)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO news_articles (source_id, title, url, published_at) VALUES (?, ?, ?, ?)`,
		sourceID, "Same story, different title", "https://example.org/articles/1", time.Now().UTC(),
	)
	assert.Error(t, err, "duplicate URL must be rejected")

	_, err = db.Exec(
		`INSERT INTO disease_trends (disease_name, date, trend_score) VALUES (?, ?, ?)`,
		"Cholera", "2026-02-10", 42.5,
	)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO disease_trends (disease_name, date, trend_score) VALUES (?, ?, ?)`,
		"Cholera", "2026-02-10", 50.0,
	)
	assert.Error(t, err, "one trend score per disease and day")
}
