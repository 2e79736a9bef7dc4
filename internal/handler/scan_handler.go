package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"facturio/internal/service"
)

// ScanHandler handles invoice scan endpoints.
type ScanHandler struct {
	scanService service.ScanService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scanService service.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// Create handles POST /api/v1/scans.
// Multipart form: "document" is the invoice file; "catalog" is an optional
// JSON object of raw catalog records. The whole synchronous pipeline runs
// inside this request; both stages block on model round-trips.
func (h *ScanHandler) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("document")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", "multipart field 'document' is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", "could not read uploaded document")
		return
	}

	state, err := h.scanService.Scan(c.Request.Context(), service.ScanInput{
		FileName:   header.Filename,
		Data:       data,
		RawCatalog: []byte(c.PostForm("catalog")),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, state)
}

// CreateByKey handles POST /api/v1/scans/by-key, scanning a document that
// was previously uploaded to object storage.
func (h *ScanHandler) CreateByKey(c *gin.Context) {
	var req struct {
		Key     string          `json:"key" binding:"required"`
		Catalog json.RawMessage `json:"catalog"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", "key is required")
		return
	}

	state, err := h.scanService.ScanStored(c.Request.Context(), req.Key, req.Catalog)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, state)
}
