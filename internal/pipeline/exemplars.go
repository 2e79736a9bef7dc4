package pipeline

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"facturio/internal/domain"
	"facturio/internal/normalizer"
)

// LoadExemplars reads few-shot exemplars from a directory. Each exemplar is
// a document file (pdf, jpg, jpeg, png, gif) paired with a sibling
// <name>.json holding its expected bill items. Documents without a sibling
// are skipped with a diagnostic. Returns nil for an empty dir path.
func LoadExemplars(dir string) ([]Exemplar, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading exemplar dir: %w", err)
	}

	var exemplars []Exemplar
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		docPath := filepath.Join(dir, entry.Name())
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		itemsPath := filepath.Join(dir, base+".json")

		itemsData, err := os.ReadFile(itemsPath)
		if err != nil {
			log.Printf("pipeline.LoadExemplars: skipping %s: no expected items file", entry.Name())
			continue
		}

		var items []domain.BillItem
		if err := json.Unmarshal(itemsData, &items); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", itemsPath, err)
		}

		doc, err := normalizer.NormalizeFile(docPath)
		if err != nil {
			return nil, fmt.Errorf("normalizing exemplar %s: %w", docPath, err)
		}

		exemplars = append(exemplars, Exemplar{Document: *doc, Items: items})
	}

	return exemplars, nil
}
