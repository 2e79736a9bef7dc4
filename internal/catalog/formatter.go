// Package catalog turns the loosely-typed external catalog representation
// into the uniform item list consumed by the comparison stage.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"facturio/internal/domain"
)

// Record is one raw catalog entry, keyed by its source identifier. Value is
// the undecoded loose record; anything that is not a JSON object is skipped
// during formatting.
type Record struct {
	Key   string
	Value any
}

// DecodeRaw decodes a raw catalog JSON object into an ordered record list.
// json.Unmarshal into a map would lose the source iteration order, so the
// object is walked token by token instead.
func DecodeRaw(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCatalog, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", domain.ErrMalformedCatalog)
	}

	var records []Record
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCatalog, err)
		}
		key := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: record %q: %v", domain.ErrMalformedCatalog, key, err)
		}
		records = append(records, Record{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCatalog, err)
	}
	return records, nil
}

// Format converts raw catalog records into CatalogItems, preserving input
// order. A record missing a required field (name, unit, unitPrice) is
// skipped with a diagnostic; it never fails the whole batch. Duplicates in
// the source produce duplicates in the output.
func Format(records []Record) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(records))

	for _, rec := range records {
		fields, ok := rec.Value.(map[string]any)
		if !ok {
			log.Printf("catalog.Format: skipping %q: record is not an object", rec.Key)
			continue
		}

		name, ok := asString(fields["name"])
		if !ok || name == "" {
			log.Printf("catalog.Format: skipping %q: missing name", rec.Key)
			continue
		}

		unitStr, ok := asString(fields["unit"])
		unit := domain.MeasureUnit(unitStr)
		if !ok || !domain.ValidMeasureUnits[unit] {
			log.Printf("catalog.Format: skipping %q: missing or unknown unit", rec.Key)
			continue
		}

		unitPrice, ok := asFloat(fields["unitPrice"])
		if !ok {
			log.Printf("catalog.Format: skipping %q: missing unitPrice", rec.Key)
			continue
		}

		items = append(items, domain.CatalogItem{
			Name:        name,
			MeasureUnit: unit,
			Stock:       stockOf(fields["stock"]),
			UnitPrice:   unitPrice,
		})
	}

	return items
}

// stockOf reads the stock field, which may be a scalar or a nested record
// with a "current" field. Missing or malformed stock defaults to 0.
func stockOf(v any) int {
	if nested, ok := v.(map[string]any); ok {
		if current, ok := asFloat(nested["current"]); ok {
			return int(current)
		}
		return 0
	}
	if n, ok := asFloat(v); ok {
		return int(n)
	}
	return 0
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
