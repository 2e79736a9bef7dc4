package port

import (
	"context"
	"encoding/json"
)

// Role tags a message block in a structured-generation request.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ImageData is an inline base64-encoded image attached to a message part.
type ImageData struct {
	Base64   string
	MimeType string
}

// Part is one content block of a message: text, an inline image, or both.
type Part struct {
	Text  string
	Image *ImageData
}

// Message is one role-tagged block in a generation request.
type Message struct {
	Role  Role
	Parts []Part
}

// GenerateInput carries the full structured-generation request: ordered
// role-tagged messages plus the JSON Schema the output must conform to.
type GenerateInput struct {
	Messages   []Message
	SchemaName string
	Schema     map[string]any
}

// StructuredGenerator abstracts a schema-constrained model invocation.
// Implementations must return output that validates against input.Schema,
// or an error wrapping domain.ErrSchemaViolation when the model's output
// does not conform.
type StructuredGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (json.RawMessage, error)
}
