package domain

import "errors"

var (
	ErrEmptyDocument     = errors.New("document reference is empty")
	ErrMalformedCatalog  = errors.New("catalog payload is malformed")
	ErrNotFound          = errors.New("source document not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrConversionFailed  = errors.New("document conversion produced no pages")
	ErrSchemaViolation   = errors.New("model output does not conform to schema")
)
