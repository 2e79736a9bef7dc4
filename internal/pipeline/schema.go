package pipeline

// JSON Schemas (draft 2020-12 subset) constraining model output for the two
// pipeline stages. They are sent to the provider as the output contract and
// used again locally to validate what comes back.

// billItemSchema describes one extracted invoice row.
func billItemSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Name of the item as printed on the bill.",
			},
			"measure_unit": map[string]any{
				"type":        "string",
				"enum":        []any{"kg", "g", "l", "ml", "u"},
				"description": "Measure unit of the item. Omit when the bill does not state it legibly.",
			},
			"unit_price": map[string]any{
				"type":        "number",
				"minimum":     0,
				"description": "Price per unit of measurement.",
			},
			"quantity": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Quantity of the item, measured in its measure unit.",
			},
		},
		"required": []any{"name", "unit_price", "quantity"},
	}
}

// ExtractionSchema is the output contract for the extraction stage.
func ExtractionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"enum":        []any{"success", "failure"},
				"description": "Whether the extraction succeeded.",
			},
			"items": map[string]any{
				"type":        "array",
				"items":       billItemSchema(),
				"description": "Items on the bill, in the order they appear.",
			},
		},
		"required": []any{"status", "items"},
	}
}

// catalogItemSchema describes one suggested catalog entry in a match result.
func catalogItemSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":         map[string]any{"type": "string", "minLength": 1},
			"measure_unit": map[string]any{"type": "string", "enum": []any{"kg", "g", "l", "ml", "u"}},
			"stock":        map[string]any{"type": "integer", "minimum": 0},
			"unit_price":   map[string]any{"type": "number", "minimum": 0},
		},
		"required": []any{"name", "measure_unit", "unit_price"},
	}
}

// MatchSchema is the output contract for the comparison stage.
func MatchSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"found": map[string]any{
				"type":        "boolean",
				"description": "Whether any semantically equivalent catalog items were found.",
			},
			"suggestions": map[string]any{
				"type":                 "object",
				"additionalProperties": catalogItemSchema(),
				"description":          "Mapping from extracted item name to the suggested catalog item. Names with no equivalent are absent.",
			},
		},
		"required": []any{"found", "suggestions"},
	}
}
