package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/repository"
)

// DiseaseRepo covers the disease aggregate: diseases, pathogens, categories,
// the link tables between them, and per-disease keywords.
type DiseaseRepo struct{ db *sql.DB }

func NewDiseaseRepo(db *sql.DB) repository.DiseaseRepository {
	return &DiseaseRepo{db: db}
}

func (repo *DiseaseRepo) GetByName(ctx context.Context, name string) (*entity.Disease, error) {
	const query = `
SELECT id, name, description, severity_level, color_code, disease_type, created_at
FROM diseases
WHERE name = ?
LIMIT 1`
	var disease entity.Disease
	err := repo.db.QueryRowContext(ctx, query, name).Scan(
		&disease.ID, &disease.Name, &disease.Description,
		&disease.SeverityLevel, &disease.ColorCode, &disease.DiseaseType,
		&disease.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return &disease, nil
}

func (repo *DiseaseRepo) Create(ctx context.Context, disease *entity.Disease) (int64, error) {
	const query = `
INSERT INTO diseases (name, description, severity_level, color_code, disease_type)
VALUES (?, ?, ?, ?, ?)`
	res, err := repo.db.ExecContext(ctx, query,
		disease.Name, disease.Description, disease.SeverityLevel,
		disease.ColorCode, disease.DiseaseType,
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

func (repo *DiseaseRepo) UpdateDescription(ctx context.Context, id int64, description string) error {
	const query = `UPDATE diseases SET description = ? WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query, description, id)
	if err != nil {
		return fmt.Errorf("UpdateDescription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateDescription: no rows affected")
	}
	return nil
}

func (repo *DiseaseRepo) GetPathogenByName(ctx context.Context, name string) (*entity.Pathogen, error) {
	const query = `
SELECT id, name, pathogen_type
FROM pathogens
WHERE name = ?
LIMIT 1`
	var pathogen entity.Pathogen
	err := repo.db.QueryRowContext(ctx, query, name).
		Scan(&pathogen.ID, &pathogen.Name, &pathogen.PathogenType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetPathogenByName: %w", err)
	}
	return &pathogen, nil
}

func (repo *DiseaseRepo) CreatePathogen(ctx context.Context, pathogen *entity.Pathogen) (int64, error) {
	const query = `INSERT INTO pathogens (name, pathogen_type) VALUES (?, ?)`
	res, err := repo.db.ExecContext(ctx, query, pathogen.Name, pathogen.PathogenType)
	if err != nil {
		return 0, fmt.Errorf("CreatePathogen: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreatePathogen: LastInsertId: %w", err)
	}
	return id, nil
}

func (repo *DiseaseRepo) GetCategoryByName(ctx context.Context, name string) (*entity.OutbreakCategory, error) {
	const query = `
SELECT id, name, color_code, severity_level
FROM outbreak_categories
WHERE name = ?
LIMIT 1`
	var category entity.OutbreakCategory
	err := repo.db.QueryRowContext(ctx, query, name).
		Scan(&category.ID, &category.Name, &category.ColorCode, &category.SeverityLevel)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetCategoryByName: %w", err)
	}
	return &category, nil
}

func (repo *DiseaseRepo) CreateCategory(ctx context.Context, category *entity.OutbreakCategory) (int64, error) {
	const query = `
INSERT INTO outbreak_categories (name, color_code, severity_level)
VALUES (?, ?, ?)`
	res, err := repo.db.ExecContext(ctx, query,
		category.Name, category.ColorCode, category.SeverityLevel,
	)
	if err != nil {
		return 0, fmt.Errorf("CreateCategory: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateCategory: LastInsertId: %w", err)
	}
	return id, nil
}

func (repo *DiseaseRepo) LinkPathogen(ctx context.Context, diseaseID, pathogenID int64, isPrimary bool) error {
	const query = `
INSERT INTO disease_pathogens (disease_id, pathogen_id, is_primary)
VALUES (?, ?, ?)
ON CONFLICT (disease_id, pathogen_id) DO UPDATE SET is_primary = excluded.is_primary`
	if _, err := repo.db.ExecContext(ctx, query, diseaseID, pathogenID, isPrimary); err != nil {
		return fmt.Errorf("LinkPathogen: %w", err)
	}
	return nil
}

func (repo *DiseaseRepo) LinkCategory(ctx context.Context, diseaseID, categoryID int64) error {
	const query = `
INSERT INTO disease_categories (disease_id, category_id)
VALUES (?, ?)
ON CONFLICT (disease_id, category_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, diseaseID, categoryID); err != nil {
		return fmt.Errorf("LinkCategory: %w", err)
	}
	return nil
}

func (repo *DiseaseRepo) HasCategory(ctx context.Context, diseaseID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM disease_categories WHERE disease_id = ?)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, diseaseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("HasCategory: %w", err)
	}
	return exists, nil
}

// AddKeywords inserts the keywords in one statement, skipping any the disease
// already has.
func (repo *DiseaseRepo) AddKeywords(ctx context.Context, diseaseID int64, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}

	values := make([]string, len(keywords))
	args := make([]any, 0, len(keywords)*2)
	for i, kw := range keywords {
		values[i] = "(?, ?)"
		args = append(args, diseaseID, kw)
	}
	query := `INSERT INTO disease_keywords (disease_id, keyword) VALUES ` +
		strings.Join(values, ", ") +
		` ON CONFLICT (disease_id, keyword) DO NOTHING`

	if _, err := repo.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("AddKeywords: %w", err)
	}
	return nil
}
