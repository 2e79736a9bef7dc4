// Package normalizer converts heterogeneous source documents (PDF, JPEG,
// PNG, GIF) into the single canonical raster-image representation sent to
// the model.
package normalizer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"facturio/internal/domain"
)

// imageMimeTypes maps recognized image extensions to their MIME type.
var imageMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// Normalize converts a source document into a CanonicalDocument. PDFs have
// only their first page rendered and re-encoded as PNG; multi-page sources
// beyond page one are ignored. Image bytes pass through unchanged.
func Normalize(filename string, data []byte) (*domain.CanonicalDocument, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == ".pdf" {
		pngData, err := renderFirstPage(data)
		if err != nil {
			return nil, err
		}
		return &domain.CanonicalDocument{
			Data:     base64.StdEncoding.EncodeToString(pngData),
			MimeType: "image/png",
		}, nil
	}

	mimeType, ok := imageMimeTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return &domain.CanonicalDocument{
		Data:     base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}, nil
}

// NormalizeFile reads a document from the local filesystem and normalizes it.
func NormalizeFile(path string) (*domain.CanonicalDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Normalize(path, data)
}

// renderFirstPage rasterizes page one of a PDF to PNG at default resolution.
func renderFirstPage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("%w: opening pdf: %v", domain.ErrConversionFailed, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", domain.ErrConversionFailed)
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering page: %v", domain.ErrConversionFailed, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
