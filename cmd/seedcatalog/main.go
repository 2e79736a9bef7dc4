// Command seedcatalog converts a catalog spreadsheet into a SQL seed file.
// The first sheet must have columns: name, unit, stock, unit price.
// Usage: go run ./cmd/seedcatalog catalog.xlsx
// Output: db/seeds/catalog_items.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type catalogEntry struct {
	name      string
	unit      string
	stock     int
	unitPrice float64
}

var validUnits = map[string]bool{"kg": true, "g": true, "l": true, "ml": true, "u": true}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedcatalog <catalog.xlsx>")
	}
	xlsxPath := os.Args[1]
	outPath := "db/seeds/catalog_items.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var entries []catalogEntry
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		entry, err := parseRow(row)
		if err != nil {
			log.Printf("row %d skipped: %v", i+1, err)
			continue
		}
		entries = append(entries, entry)
	}
	log.Printf("%s: %d entries", sheet, len(entries))

	if len(entries) == 0 {
		return fmt.Errorf("no usable rows in %s", xlsxPath)
	}

	var sb strings.Builder
	sb.WriteString("-- Generated by cmd/seedcatalog. Do not edit.\n")
	sb.WriteString("TRUNCATE catalog_items RESTART IDENTITY;\n\n")
	sb.WriteString("INSERT INTO catalog_items (name, measure_unit, stock, unit_price) VALUES\n")
	for i, e := range entries {
		sep := ","
		if i == len(entries)-1 {
			sep = ";"
		}
		sb.WriteString(fmt.Sprintf("  (%s, '%s', %d, %g)%s\n",
			quoteSQL(e.name), e.unit, e.stock, e.unitPrice, sep))
	}

	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	log.Printf("wrote %s", outPath)
	return nil
}

func parseRow(row []string) (catalogEntry, error) {
	if len(row) < 4 {
		return catalogEntry{}, fmt.Errorf("expected 4 columns, got %d", len(row))
	}

	name := strings.TrimSpace(row[0])
	if name == "" {
		return catalogEntry{}, fmt.Errorf("empty name")
	}

	unit := strings.ToLower(strings.TrimSpace(row[1]))
	if !validUnits[unit] {
		return catalogEntry{}, fmt.Errorf("unknown unit %q", row[1])
	}

	stock, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil || stock < 0 {
		return catalogEntry{}, fmt.Errorf("invalid stock %q", row[2])
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil || price < 0 {
		return catalogEntry{}, fmt.Errorf("invalid unit price %q", row[3])
	}

	return catalogEntry{name: name, unit: unit, stock: stock, unitPrice: price}, nil
}

func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
