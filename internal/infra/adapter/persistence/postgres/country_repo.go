package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/repository"
)

type CountryRepo struct{ db *sql.DB }

func NewCountryRepo(db *sql.DB) repository.CountryRepository {
	return &CountryRepo{db: db}
}

func (repo *CountryRepo) GetByName(ctx context.Context, name string) (*entity.Country, error) {
	const query = `
SELECT id, name, code, continent, population, created_at
FROM countries
WHERE name = $1
LIMIT 1`
	var country entity.Country
	err := repo.db.QueryRowContext(ctx, query, name).Scan(
		&country.ID, &country.Name, &country.Code,
		&country.Continent, &country.Population, &country.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return &country, nil
}

func (repo *CountryRepo) GetByCode(ctx context.Context, code string) (*entity.Country, error) {
	const query = `
SELECT id, name, code, continent, population, created_at
FROM countries
WHERE code = $1
LIMIT 1`
	var country entity.Country
	err := repo.db.QueryRowContext(ctx, query, code).Scan(
		&country.ID, &country.Name, &country.Code,
		&country.Continent, &country.Population, &country.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByCode: %w", err)
	}
	return &country, nil
}

func (repo *CountryRepo) Create(ctx context.Context, country *entity.Country) (int64, error) {
	const query = `
INSERT INTO countries (name, code, continent, population)
VALUES ($1, $2, $3, $4)
RETURNING id`
	var id int64
	err := repo.db.QueryRowContext(ctx, query,
		country.Name, country.Code, country.Continent, country.Population,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}
