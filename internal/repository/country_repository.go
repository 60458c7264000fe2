package repository

import (
	"context"

	"outbreak-feed/internal/domain/entity"
)

type CountryRepository interface {
	// GetByName matches the canonical name exactly. Returns (nil, nil) when
	// no row exists.
	GetByName(ctx context.Context, name string) (*entity.Country, error)
	GetByCode(ctx context.Context, code string) (*entity.Country, error)
	Create(ctx context.Context, country *entity.Country) (int64, error)
}
