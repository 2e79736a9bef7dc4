package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"facturio/internal/port"
)

// MockStructuredGenerator is a mock implementation of port.StructuredGenerator.
type MockStructuredGenerator struct {
	mock.Mock
}

func (m *MockStructuredGenerator) Generate(ctx context.Context, input port.GenerateInput) (json.RawMessage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
