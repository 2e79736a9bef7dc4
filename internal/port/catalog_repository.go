package port

import (
	"context"

	"facturio/internal/domain"
)

// CatalogRepository loads the reference catalog the comparison stage
// matches extracted items against.
type CatalogRepository interface {
	ListAll(ctx context.Context) ([]domain.CatalogItem, error)
}
