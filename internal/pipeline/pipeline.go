// Package pipeline implements the two-stage extraction-and-matching
// pipeline: extract bill items from a canonical document, then compare them
// against the reference catalog.
package pipeline

import (
	"context"

	"facturio/internal/domain"
)

// Stage is one step of the pipeline, mutating the shared state in place.
type Stage func(ctx context.Context, state *domain.PipelineState) error

// Pipeline is the fixed two-stage sequence: extract items, then compare
// them against the catalog. It is stateless across runs; each Run allocates
// a fresh PipelineState and returns it verbatim.
type Pipeline struct {
	extractor *Extractor
	comparer  *Comparer
}

// New creates a Pipeline from its two stages.
func New(extractor *Extractor, comparer *Comparer) *Pipeline {
	return &Pipeline{extractor: extractor, comparer: comparer}
}

// Run executes extraction then comparison over a fresh state. The only
// conditional logic lives inside Compare's failure short-circuit; a schema
// violation or provider fault in either stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, doc *domain.CanonicalDocument, catalog []domain.CatalogItem) (*domain.PipelineState, error) {
	state := domain.NewPipelineState()
	state.DBItems = catalog

	stages := []Stage{
		p.extractItems(doc),
		p.compareItems(),
	}
	for _, stage := range stages {
		if err := stage(ctx, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (p *Pipeline) extractItems(doc *domain.CanonicalDocument) Stage {
	return func(ctx context.Context, state *domain.PipelineState) error {
		result, err := p.extractor.Extract(ctx, doc)
		if err != nil {
			return err
		}
		state.BillItems = *result
		return nil
	}
}

func (p *Pipeline) compareItems() Stage {
	return func(ctx context.Context, state *domain.PipelineState) error {
		result, err := p.comparer.Compare(ctx, &state.BillItems, state.DBItems)
		if err != nil {
			return err
		}
		state.ItemPairs = *result
		return nil
	}
}
