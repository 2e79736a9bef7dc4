package domain

// CanonicalDocument is the single raster-image representation of a source
// document, ready to embed in a model request. Data holds base64-encoded
// image bytes; MimeType is one of image/png, image/jpeg, image/gif.
type CanonicalDocument struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

// BillItem is one product row parsed from a purchase invoice.
// MeasureUnit is empty when the invoice does not state it legibly.
type BillItem struct {
	Name        string      `json:"name"`
	MeasureUnit MeasureUnit `json:"measure_unit,omitempty"`
	UnitPrice   float64     `json:"unit_price"`
	Quantity    int         `json:"quantity"`
}

// ExtractionResult is the typed output of the extraction stage.
// When Status is failure, Items must be treated as unreliable and the
// comparison stage will not run against them.
type ExtractionResult struct {
	Status ExtractionStatus `json:"status"`
	Items  []BillItem       `json:"items"`
}

// CatalogItem is one stock-keeping entry in the reference catalog.
type CatalogItem struct {
	Name        string      `db:"name" json:"name"`
	MeasureUnit MeasureUnit `db:"measure_unit" json:"measure_unit"`
	Stock       int         `db:"stock" json:"stock"`
	UnitPrice   float64     `db:"unit_price" json:"unit_price"`
}

// MatchResult maps extracted bill-item names to their suggested catalog
// entries. Found is false exactly when Suggestions is empty; names with no
// semantic equivalent are simply absent from the map.
type MatchResult struct {
	Found       bool                   `json:"found"`
	Suggestions map[string]CatalogItem `json:"suggestions"`
}

// PipelineState is the mutable aggregate threaded through a single pipeline
// run. It is created fresh per invocation and returned wholesale to the
// caller; it is never shared across runs.
type PipelineState struct {
	BillItems ExtractionResult `json:"bill_items"`
	DBItems   []CatalogItem    `json:"db_items"`
	ItemPairs MatchResult      `json:"item_pairs"`
}

// NewPipelineState returns a PipelineState in its pre-run shape: a
// failure-shaped extraction result and an empty match result.
func NewPipelineState() *PipelineState {
	return &PipelineState{
		BillItems: ExtractionResult{Status: ExtractionFailure, Items: []BillItem{}},
		DBItems:   []CatalogItem{},
		ItemPairs: MatchResult{Found: false, Suggestions: map[string]CatalogItem{}},
	}
}
