package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"facturio/internal/domain"
	"facturio/internal/port"
)

// Comparer runs the comparison stage: one schema-constrained generation
// request over the extracted items and the full formatted catalog.
type Comparer struct {
	gen port.StructuredGenerator
}

// NewComparer creates a Comparer.
func NewComparer(gen port.StructuredGenerator) *Comparer {
	return &Comparer{gen: gen}
}

// Compare produces the name-to-catalog-item suggestions for a set of
// extracted items. When the extraction reported failure it short-circuits
// with an empty, not-found result and does not invoke the capability; an
// empty set of matches is a normal outcome, never an error.
func (c *Comparer) Compare(ctx context.Context, items *domain.ExtractionResult, catalog []domain.CatalogItem) (*domain.MatchResult, error) {
	if items.Status == domain.ExtractionFailure {
		return &domain.MatchResult{Found: false, Suggestions: map[string]domain.CatalogItem{}}, nil
	}

	extracted, err := json.Marshal(items.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling extracted items: %w", err)
	}
	catalogJSON, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}

	messages := []port.Message{
		{Role: port.RoleSystem, Parts: []port.Part{{Text: comparisonPrompt}}},
		{Role: port.RoleUser, Parts: []port.Part{{Text: fmt.Sprintf(
			"Items extracted from the invoice:\n%s\n\nReference catalog:\n%s",
			extracted, catalogJSON,
		)}}},
	}

	raw, err := c.gen.Generate(ctx, port.GenerateInput{
		Messages:   messages,
		SchemaName: "item_suggestions",
		Schema:     MatchSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("comparison stage: %w", err)
	}

	var result domain.MatchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding match result: %v", domain.ErrSchemaViolation, err)
	}

	// Hold the found/suggestions invariant regardless of what the model said.
	if result.Suggestions == nil {
		result.Suggestions = map[string]domain.CatalogItem{}
	}
	if len(result.Suggestions) == 0 {
		result.Found = false
	}
	if !result.Found {
		result.Suggestions = map[string]domain.CatalogItem{}
	}

	return &result, nil
}
