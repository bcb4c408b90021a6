// Package handlers provides HTTP handlers for portfolio lifecycle
// operations: viewing, manual adds, imports, exports and price refresh.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/nlagos/folio/internal/domain"
	"github.com/nlagos/folio/internal/modules/holdings"
	"github.com/rs/zerolog"
)

// maxImportSize bounds CSV uploads (1 MB covers thousands of rows).
const maxImportSize = 1 << 20

// Handler handles portfolio HTTP requests.
type Handler struct {
	service *holdings.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler.
func NewHandler(service *holdings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio returns the current snapshot.
// GET /api/portfolio
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	store := h.service.Store()
	snapshot := store.Snapshot()

	rows := make([]map[string]interface{}, 0, len(snapshot))
	for _, holding := range snapshot {
		rows = append(rows, holdingJSON(holding))
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": store.SnapshotID(),
		"is_sample":   store.IsSample(),
		"count":       len(rows),
		"holdings":    rows,
	})
}

// HandleAddHolding appends one manually entered holding. The form rule is
// stricter than the engine's normalizer: zero quantities and prices are
// rejected here even though the engine accepts them.
// POST /api/portfolio/holdings
func (h *Handler) HandleAddHolding(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawHolding
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if raw.AssetID == "" || raw.Quantity <= 0 || raw.PurchasePrice <= 0 || raw.CurrentPrice <= 0 {
		h.writeError(w, http.StatusBadRequest, "asset name, quantity and prices are required and must be positive")
		return
	}

	holding, err := h.service.Add(raw)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, holdingJSON(holding))
}

// HandleClearPortfolio empties the portfolio.
// DELETE /api/portfolio
func (h *Handler) HandleClearPortfolio(w http.ResponseWriter, r *http.Request) {
	h.service.Clear()
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleLoadSample replaces the snapshot with the built-in sample set.
// POST /api/portfolio/sample
func (h *Handler) HandleLoadSample(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LoadSample(); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "sample loaded",
		"count":  h.service.Store().Len(),
	})
}

// HandleImport replaces the snapshot from an uploaded CSV. The file may
// arrive as a multipart form field named "file" or as the raw body.
// POST /api/portfolio/import
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	source := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		source = file
	}

	raws, err := holdings.ImportCSV(source)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	imported, err := h.service.Import(raws)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "imported",
		"count":       len(imported),
		"snapshot_id": h.service.Store().SnapshotID(),
	})
}

// HandleExport downloads the current snapshot as CSV, base fields only.
// GET /api/portfolio/export
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	snapshot := h.service.Store().Snapshot()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.csv"`)
	if err := holdings.ExportCSV(w, snapshot); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV export")
	}
}

// HandleTemplate downloads the two-row import template.
// GET /api/portfolio/template
func (h *Handler) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio_template.csv"`)
	if err := holdings.WriteTemplateCSV(w); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV template")
	}
}

// HandleRefreshPrices updates current prices from the market-data
// provider for every tradable holding.
// POST /api/portfolio/refresh-prices
func (h *Handler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.RefreshPrices()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "refreshed",
		"updated": updated,
		"count":   h.service.Store().Len(),
	})
}

// writeDomainError maps engine errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var missingErr *domain.MissingColumnsError

	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &missingErr):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":           missingErr.Error(),
			"missing_columns": missingErr.Missing,
		})
	case errors.Is(err, domain.ErrEmptyPortfolio):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// holdingJSON maps a holding to a JSON-safe object. encoding/json rejects
// NaN, so the undefined return is shipped as null.
func holdingJSON(h domain.Holding) map[string]interface{} {
	return map[string]interface{}{
		"asset_id":       h.AssetID,
		"category":       h.Category,
		"quantity":       h.Quantity,
		"purchase_price": h.PurchasePrice,
		"current_price":  h.CurrentPrice,
		"cost_basis":     h.CostBasis,
		"current_value":  h.CurrentValue,
		"gain_loss":      h.GainLoss,
		"return_pct":     nullableFloat(h.ReturnPct),
	}
}

func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
