package service

import (
	"context"

	"facturio/internal/domain"
	"facturio/internal/port"
)

// CatalogService exposes the reference catalog for operator inspection.
type CatalogService interface {
	List(ctx context.Context) ([]domain.CatalogItem, error)
}

type catalogService struct {
	repo port.CatalogRepository
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(repo port.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) List(ctx context.Context) ([]domain.CatalogItem, error) {
	return s.repo.ListAll(ctx)
}
