package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"facturio/internal/domain"
	"facturio/internal/port"
)

type catalogRepo struct {
	db *sqlx.DB
}

// NewCatalogRepo creates a new PostgreSQL-backed CatalogRepository.
func NewCatalogRepo(db *sqlx.DB) port.CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListAll(ctx context.Context) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT name, measure_unit, stock, unit_price
		 FROM catalog_items
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return items, nil
}
