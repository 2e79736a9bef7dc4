package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"facturio/internal/domain"
	"facturio/internal/port"
)

// Exemplar is a few-shot worked example: a normalized document and its
// hand-verified expected extraction.
type Exemplar struct {
	Document domain.CanonicalDocument
	Items    []domain.BillItem
}

// Extractor runs the extraction stage: one schema-constrained generation
// request over the canonical document, optionally preceded by few-shot
// exemplars.
type Extractor struct {
	gen       port.StructuredGenerator
	exemplars []Exemplar
}

// NewExtractor creates an Extractor. Exemplars may be nil.
func NewExtractor(gen port.StructuredGenerator, exemplars []Exemplar) *Extractor {
	return &Extractor{gen: gen, exemplars: exemplars}
}

// Extract produces the typed extraction result for a document. A
// model-reported failure flows back as data (Status == failure); a
// non-conforming model response is an error wrapping domain.ErrSchemaViolation.
func (e *Extractor) Extract(ctx context.Context, doc *domain.CanonicalDocument) (*domain.ExtractionResult, error) {
	messages := []port.Message{
		{Role: port.RoleSystem, Parts: []port.Part{{Text: extractionPrompt}}},
	}

	for _, ex := range e.exemplars {
		expected, err := json.Marshal(domain.ExtractionResult{
			Status: domain.ExtractionSuccess,
			Items:  ex.Items,
		})
		if err != nil {
			return nil, fmt.Errorf("marshaling exemplar items: %w", err)
		}
		messages = append(messages, port.Message{
			Role: port.RoleUser,
			Parts: []port.Part{
				{Image: &port.ImageData{Base64: ex.Document.Data, MimeType: ex.Document.MimeType}},
				{Text: exemplarPreface + "\n" + string(expected)},
			},
		})
	}

	messages = append(messages, port.Message{
		Role: port.RoleUser,
		Parts: []port.Part{
			{Image: &port.ImageData{Base64: doc.Data, MimeType: doc.MimeType}},
			{Text: targetPreface},
		},
	})

	raw, err := e.gen.Generate(ctx, port.GenerateInput{
		Messages:   messages,
		SchemaName: "bill_items",
		Schema:     ExtractionSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("extraction stage: %w", err)
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding extraction result: %v", domain.ErrSchemaViolation, err)
	}

	normalizeItems(&result)
	return &result, nil
}

// normalizeItems applies the defaulting rules the model is forbidden to
// apply itself: quantity defaults to 1, unknown units are dropped.
func normalizeItems(result *domain.ExtractionResult) {
	if result.Items == nil {
		result.Items = []domain.BillItem{}
	}
	for i := range result.Items {
		if result.Items[i].Quantity <= 0 {
			result.Items[i].Quantity = 1
		}
		if !domain.ValidMeasureUnits[result.Items[i].MeasureUnit] {
			result.Items[i].MeasureUnit = ""
		}
	}
}
