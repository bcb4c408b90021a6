package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nlagos/folio/internal/domain"
	"github.com/nlagos/folio/internal/modules/holdings"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*chi.Mux, *holdings.Service) {
	t.Helper()
	svc := holdings.NewService(holdings.NewStore(), nil, nil, zerolog.Nop())
	h := NewHandler(svc, zerolog.Nop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, svc
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleGetPortfolioEmpty(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, false, body["is_sample"])
}

func TestHandleLoadSampleAndGet(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/sample", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	body := decodeBody(t, rec)
	assert.Equal(t, float64(len(domain.SampleRecords())), body["count"])
	assert.Equal(t, true, body["is_sample"])
}

func TestHandleAddHolding(t *testing.T) {
	r, svc := newTestRouter(t)

	payload := `{"asset_id":"AAPL","category":"Stocks","quantity":10,"purchase_price":150,"current_price":180}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/holdings", strings.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 1800.0, body["current_value"])
	assert.Equal(t, 1, svc.Store().Len())
}

func TestHandleAddHoldingRejectsZeroQuantity(t *testing.T) {
	r, svc := newTestRouter(t)

	// The engine accepts zero quantity; the manual-entry form does not.
	payload := `{"asset_id":"AAPL","category":"Stocks","quantity":0,"purchase_price":150,"current_price":180}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/holdings", strings.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.Store().Len())
}

func TestHandleClearPortfolio(t *testing.T) {
	r, svc := newTestRouter(t)
	require.NoError(t, svc.LoadSample())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.Store().Len())
}

func TestHandleImportCSVBody(t *testing.T) {
	r, svc := newTestRouter(t)

	csv := "Asset,Category,Quantity,Purchase Price,Current Price\nAAPL,Stocks,10,150,180\n"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/import", strings.NewReader(csv)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.Store().Len())
}

func TestHandleImportMissingColumn(t *testing.T) {
	r, _ := newTestRouter(t)

	csv := "Asset,Category,Quantity,Purchase Price\nAAPL,Stocks,10,150\n"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/import", strings.NewReader(csv)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"Current Price"}, body["missing_columns"])
}

func TestExportTemplateRoundTrip(t *testing.T) {
	r, svc := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portfolio/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	// Re-import the template through the import endpoint.
	importRec := httptest.NewRecorder()
	r.ServeHTTP(importRec, httptest.NewRequest(http.MethodPost, "/portfolio/import", bytes.NewReader(rec.Body.Bytes())))
	require.Equal(t, http.StatusOK, importRec.Code)

	snap := svc.Store().Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "AAPL", snap[0].AssetID)
	assert.Equal(t, 10.0, snap[0].Quantity)
	assert.Equal(t, "VTI", snap[1].AssetID)
	assert.Equal(t, 220.0, snap[1].CurrentPrice)
}

func TestHandleRefreshPricesEmptyPortfolio(t *testing.T) {
	store := holdings.NewStore()
	quoter := quoterFunc(func(string) (float64, error) { return 100, nil })
	svc := holdings.NewService(store, quoter, nil, zerolog.Nop())
	h := NewHandler(svc, zerolog.Nop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/refresh-prices", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type quoterFunc func(assetID string) (float64, error)

func (f quoterFunc) Quote(assetID string) (float64, error) { return f(assetID) }
