package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"facturio/internal/domain"
	"facturio/internal/port"
	"facturio/mocks"
)

func successItems() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Status: domain.ExtractionSuccess,
		Items: []domain.BillItem{
			{Name: "BIDON AGUA 20 LT", MeasureUnit: domain.UnitLiter, UnitPrice: 2500, Quantity: 3},
		},
	}
}

func testCatalog() []domain.CatalogItem {
	return []domain.CatalogItem{
		{Name: "Agua 20L", MeasureUnit: domain.UnitLiter, Stock: 10, UnitPrice: 2500},
		{Name: "Arroz Grado 1 1kg", MeasureUnit: domain.UnitKilogram, Stock: 40, UnitPrice: 1490},
	}
}

func TestCompare_FailureShortCircuit(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)

	comparer := NewComparer(gen)
	result, err := comparer.Compare(context.Background(), &domain.ExtractionResult{
		Status: domain.ExtractionFailure,
		Items:  []domain.BillItem{},
	}, testCatalog())
	require.NoError(t, err)

	assert.False(t, result.Found)
	assert.Empty(t, result.Suggestions)
	assert.NotNil(t, result.Suggestions)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCompare_MatchFound(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(json.RawMessage(`{
		"found": true,
		"suggestions": {
			"BIDON AGUA 20 LT": {"name": "Agua 20L", "measure_unit": "l", "stock": 10, "unit_price": 2500}
		}
	}`), nil)

	comparer := NewComparer(gen)
	result, err := comparer.Compare(context.Background(), successItems(), testCatalog())
	require.NoError(t, err)

	assert.True(t, result.Found)
	require.Contains(t, result.Suggestions, "BIDON AGUA 20 LT")
	assert.Equal(t, "Agua 20L", result.Suggestions["BIDON AGUA 20 LT"].Name)
}

func TestCompare_EmptyCatalogStillInvokes(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"found": false, "suggestions": {}}`), nil)

	comparer := NewComparer(gen)
	result, err := comparer.Compare(context.Background(), successItems(), nil)
	require.NoError(t, err)

	assert.False(t, result.Found)
	assert.Empty(t, result.Suggestions)
	gen.AssertExpectations(t)
}

func TestCompare_SendsItemsAndCatalog(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		if in.SchemaName != "item_suggestions" || len(in.Messages) != 2 {
			return false
		}
		body := in.Messages[1].Parts[0].Text
		return in.Messages[0].Role == port.RoleSystem &&
			containsAll(body, "BIDON AGUA 20 LT", "Agua 20L", "Arroz Grado 1 1kg")
	})).Return(json.RawMessage(`{"found": false, "suggestions": {}}`), nil)

	comparer := NewComparer(gen)
	_, err := comparer.Compare(context.Background(), successItems(), testCatalog())
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

// Invariant repair: found without suggestions, and suggestions without found,
// both normalize to the consistent shape.
func TestCompare_InvariantNormalization(t *testing.T) {
	cases := []struct {
		name     string
		response string
		found    bool
		count    int
	}{
		{"found true but empty", `{"found": true, "suggestions": {}}`, false, 0},
		{"found true nil suggestions", `{"found": true}`, false, 0},
		{"found false with suggestions", `{"found": false, "suggestions": {"X": {"name": "Agua 20L", "measure_unit": "l", "stock": 1, "unit_price": 2500}}}`, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := new(mocks.MockStructuredGenerator)
			gen.On("Generate", mock.Anything, mock.Anything).
				Return(json.RawMessage(tc.response), nil)

			comparer := NewComparer(gen)
			result, err := comparer.Compare(context.Background(), successItems(), testCatalog())
			require.NoError(t, err)

			assert.Equal(t, tc.found, result.Found)
			assert.Len(t, result.Suggestions, tc.count)
			assert.NotNil(t, result.Suggestions)
		})
	}
}

func TestCompare_GeneratorErrorPropagates(t *testing.T) {
	genErr := errors.New("provider unavailable")
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, genErr)

	comparer := NewComparer(gen)
	_, err := comparer.Compare(context.Background(), successItems(), testCatalog())
	require.Error(t, err)
	assert.ErrorIs(t, err, genErr)
}

func TestCompare_UndecodableResponseIsSchemaViolation(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"found": "maybe"}`), nil)

	comparer := NewComparer(gen)
	_, err := comparer.Compare(context.Background(), successItems(), testCatalog())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
