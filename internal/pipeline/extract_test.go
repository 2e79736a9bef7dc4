package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"facturio/internal/domain"
	"facturio/internal/port"
	"facturio/mocks"
)

func testDoc() *domain.CanonicalDocument {
	return &domain.CanonicalDocument{Data: "aW1hZ2U=", MimeType: "image/png"}
}

func TestExtract_Success(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(json.RawMessage(`{
		"status": "success",
		"items": [
			{"name": "BIDON AGUA 20 LT", "measure_unit": "l", "unit_price": 2500, "quantity": 3},
			{"name": "ARROZ GRADO 1", "measure_unit": "kg", "unit_price": 1490, "quantity": 2}
		]
	}`), nil)

	extractor := NewExtractor(gen, nil)
	result, err := extractor.Extract(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionSuccess, result.Status)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "BIDON AGUA 20 LT", result.Items[0].Name)
	assert.Equal(t, domain.UnitLiter, result.Items[0].MeasureUnit)
	assert.Equal(t, 3, result.Items[0].Quantity)
	gen.AssertExpectations(t)
}

func TestExtract_ModelReportedFailureIsData(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"status": "failure", "items": []}`), nil)

	extractor := NewExtractor(gen, nil)
	result, err := extractor.Extract(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionFailure, result.Status)
	assert.Empty(t, result.Items)
}

func TestExtract_QuantityDefaultsToOne(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(json.RawMessage(`{
		"status": "success",
		"items": [{"name": "PAN", "unit_price": 990}]
	}`), nil)

	extractor := NewExtractor(gen, nil)
	result, err := extractor.Extract(context.Background(), testDoc())
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.Items[0].Quantity)
	assert.Equal(t, domain.MeasureUnit(""), result.Items[0].MeasureUnit)
}

func TestExtract_UnknownUnitDropped(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(json.RawMessage(`{
		"status": "success",
		"items": [{"name": "HARINA", "measure_unit": "sacos", "unit_price": 900, "quantity": 1}]
	}`), nil)

	extractor := NewExtractor(gen, nil)
	result, err := extractor.Extract(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, domain.MeasureUnit(""), result.Items[0].MeasureUnit)
}

func TestExtract_SendsDocumentAndSchema(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		if in.SchemaName != "bill_items" || in.Schema == nil {
			return false
		}
		// system prompt first, target document last
		if len(in.Messages) < 2 || in.Messages[0].Role != port.RoleSystem {
			return false
		}
		last := in.Messages[len(in.Messages)-1]
		return last.Role == port.RoleUser &&
			last.Parts[0].Image != nil &&
			last.Parts[0].Image.Base64 == "aW1hZ2U="
	})).Return(json.RawMessage(`{"status": "success", "items": []}`), nil)

	extractor := NewExtractor(gen, nil)
	_, err := extractor.Extract(context.Background(), testDoc())
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestExtract_ExemplarsPrecedeTarget(t *testing.T) {
	exemplars := []Exemplar{{
		Document: domain.CanonicalDocument{Data: "ZXhlbXBsYXI=", MimeType: "image/jpeg"},
		Items:    []domain.BillItem{{Name: "COCA COLA 3L", MeasureUnit: domain.UnitLiter, UnitPrice: 2190, Quantity: 6}},
	}}

	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		// system, one exemplar, target
		if len(in.Messages) != 3 {
			return false
		}
		ex := in.Messages[1]
		return ex.Parts[0].Image.Base64 == "ZXhlbXBsYXI=" &&
			len(ex.Parts) == 2 &&
			ex.Parts[1].Text != ""
	})).Return(json.RawMessage(`{"status": "success", "items": []}`), nil)

	extractor := NewExtractor(gen, exemplars)
	_, err := extractor.Extract(context.Background(), testDoc())
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestExtract_GeneratorErrorPropagates(t *testing.T) {
	genErr := errors.New("provider unavailable")
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, genErr)

	extractor := NewExtractor(gen, nil)
	_, err := extractor.Extract(context.Background(), testDoc())
	require.Error(t, err)
	assert.ErrorIs(t, err, genErr)
}

func TestExtract_UndecodableResponseIsSchemaViolation(t *testing.T) {
	gen := new(mocks.MockStructuredGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(json.RawMessage(`not json at all`), nil)

	extractor := NewExtractor(gen, nil)
	_, err := extractor.Extract(context.Background(), testDoc())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
}
