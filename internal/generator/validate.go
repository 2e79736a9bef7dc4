package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"facturio/internal/domain"
)

// ValidateAgainstSchema checks a model's JSON output against the request
// schema. A non-conforming payload is a schema violation: fatal for the
// current run, never coerced or retried.
func ValidateAgainstSchema(schema map[string]any, output []byte) error {
	b, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(output, &v); err != nil {
		return fmt.Errorf("%w: output is not valid JSON: %v", domain.ErrSchemaViolation, err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	return nil
}

// StripCodeFences removes markdown code fences some models wrap around JSON
// output despite instructions not to.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
