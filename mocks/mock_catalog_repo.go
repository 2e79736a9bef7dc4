package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturio/internal/domain"
)

// MockCatalogRepository is a mock implementation of port.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListAll(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}
