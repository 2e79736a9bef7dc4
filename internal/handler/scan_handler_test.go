package handler_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"facturio/internal/domain"
	"facturio/internal/handler"
	"facturio/internal/pipeline"
	"facturio/internal/router"
	"facturio/internal/service"
	"facturio/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the real service and pipeline over mocked generators
// and a mocked catalog repository.
func newTestRouter(t *testing.T, repo *mocks.MockCatalogRepository) *gin.Engine {
	t.Helper()

	extractGen := new(mocks.MockStructuredGenerator)
	extractGen.On("Generate", mock.Anything, mock.Anything).Return(json.RawMessage(`{
		"status": "success",
		"items": [{"name": "BIDON AGUA 20 LT", "measure_unit": "l", "unit_price": 2500, "quantity": 3}]
	}`), nil).Maybe()

	compareGen := new(mocks.MockStructuredGenerator)
	compareGen.On("Generate", mock.Anything, mock.Anything).Return(json.RawMessage(`{
		"found": true,
		"suggestions": {
			"BIDON AGUA 20 LT": {"name": "Agua 20L", "measure_unit": "l", "stock": 10, "unit_price": 2500}
		}
	}`), nil).Maybe()

	pl := pipeline.New(pipeline.NewExtractor(extractGen, nil), pipeline.NewComparer(compareGen))

	// A typed nil mock would make the repository interface non-nil inside
	// the service, so only pass it when the test supplies one.
	var catalogSvc service.CatalogService
	var scanSvc service.ScanService
	if repo != nil {
		scanSvc = service.NewScanService(pl, nil, repo, nil)
		catalogSvc = service.NewCatalogService(repo)
	} else {
		scanSvc = service.NewScanService(pl, nil, nil, nil)
	}

	return router.Setup(
		handler.NewScanHandler(scanSvc),
		handler.NewCatalogHandler(catalogSvc),
		handler.NewHealthHandler(nil),
	)
}

func multipartDocument(t *testing.T, fieldCatalog string) (*bytes.Buffer, string) {
	t.Helper()

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1, 1))))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("document", "invoice.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	if fieldCatalog != "" {
		require.NoError(t, w.WriteField("catalog", fieldCatalog))
	}
	require.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

func TestCreateScan(t *testing.T) {
	r := newTestRouter(t, nil)

	body, contentType := multipartDocument(t, `{
		"item-1": {"name": "Agua 20L", "unit": "l", "stock": 10, "unitPrice": 2500}
	}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			BillItems struct {
				Status string `json:"status"`
			} `json:"bill_items"`
			ItemPairs struct {
				Found bool `json:"found"`
			} `json:"item_pairs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "success", resp.Data.BillItems.Status)
	assert.True(t, resp.Data.ItemPairs.Found)
}

func TestCreateScan_MissingDocument(t *testing.T) {
	r := newTestRouter(t, nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION")
}

func TestCreateScan_MalformedCatalog(t *testing.T) {
	r := newTestRouter(t, nil)

	body, contentType := multipartDocument(t, `[1, 2, 3]`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog payload is malformed")
}

func TestCreateScanByKey_MissingKey(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/by-key",
		bytes.NewBufferString(`{"catalog": {}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "key is required")
}

func TestListCatalog(t *testing.T) {
	repo := new(mocks.MockCatalogRepository)
	repo.On("ListAll", mock.Anything).Return([]domain.CatalogItem{
		{Name: "Agua 20L", MeasureUnit: domain.UnitLiter, Stock: 10, UnitPrice: 2500},
	}, nil)

	r := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Agua 20L")
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_NoDatabase(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
