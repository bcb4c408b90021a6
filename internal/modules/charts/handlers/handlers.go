// Package handlers provides HTTP handlers for the chart datasets, as
// JSON by default and rendered PNG with ?format=png.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/nlagos/folio/internal/domain"
	"github.com/nlagos/folio/internal/modules/charts"
	"github.com/nlagos/folio/internal/modules/holdings"
	"github.com/rs/zerolog"
)

// Handler handles chart HTTP requests.
type Handler struct {
	service *charts.Service
	store   *holdings.Store
	log     zerolog.Logger
}

// NewHandler creates a new charts handler.
func NewHandler(service *charts.Service, store *holdings.Store, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		store:   store,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// HandleAllocation returns the allocation dataset.
// GET /api/charts/allocation
func (h *Handler) HandleAllocation(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.filteredSnapshot(w, r)
	if !ok {
		return
	}
	slices := h.service.BuildAllocationDataset(snapshot)

	if wantsPNG(r) {
		png, err := charts.RenderAllocationPNG(slices)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writePNG(w, png)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"slices": slices})
}

// HandlePerformance returns the performance dataset, sorted ascending by
// return.
// GET /api/charts/performance
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.filteredSnapshot(w, r)
	if !ok {
		return
	}
	bars := h.service.BuildPerformanceDataset(snapshot)

	if wantsPNG(r) {
		png, err := charts.RenderPerformancePNG(bars)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writePNG(w, png)
		return
	}

	rows := make([]map[string]interface{}, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, map[string]interface{}{
			"asset_id":   b.AssetID,
			"return_pct": nullableFloat(b.ReturnPct),
			"sign":       b.Sign,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"bars": rows})
}

// HandleRiskReturn returns the risk/return scatter dataset. The risk
// value carries random jitter; pass ?seed= for reproducible output.
// GET /api/charts/risk-return
func (h *Handler) HandleRiskReturn(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.filteredSnapshot(w, r)
	if !ok {
		return
	}

	var points []charts.RiskReturnPoint
	if seedParam := r.URL.Query().Get("seed"); seedParam != "" {
		seed, err := strconv.ParseInt(seedParam, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
		points = h.service.BuildRiskReturnDatasetSeeded(snapshot, seed)
	} else {
		points = h.service.BuildRiskReturnDataset(snapshot)
	}

	if wantsPNG(r) {
		png, err := charts.RenderRiskReturnPNG(points)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writePNG(w, png)
		return
	}

	rows := make([]map[string]interface{}, 0, len(points))
	for _, p := range points {
		rows = append(rows, map[string]interface{}{
			"asset_id":   p.AssetID,
			"risk":       nullableFloat(p.Risk),
			"return_pct": nullableFloat(p.Return),
			"size":       p.Size,
			"category":   p.Category,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"points": rows})
}

// HandleHistorical returns the rebased historical comparison series for
// the snapshot's tradable assets over ?period= (default 1y).
// GET /api/charts/historical
func (h *Handler) HandleHistorical(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.filteredSnapshot(w, r)
	if !ok {
		return
	}

	assetIDs := make([]string, 0, len(snapshot))
	for _, holding := range snapshot {
		assetIDs = append(assetIDs, holding.AssetID)
	}

	series, err := h.service.BuildHistoricalDataset(assetIDs, r.URL.Query().Get("period"))
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			h.writeError(w, http.StatusNotFound, "no historical data available for the current holdings")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if wantsPNG(r) {
		png, err := charts.RenderHistoricalPNG(series)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writePNG(w, png)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"series": series})
}

// filteredSnapshot loads the snapshot, applies the optional ?categories=
// filter and reports the empty case as 404. The bool is false when a
// response has already been written.
func (h *Handler) filteredSnapshot(w http.ResponseWriter, r *http.Request) ([]domain.Holding, bool) {
	snapshot := h.store.Snapshot()
	if categories := parseCategories(r); categories != nil {
		snapshot = domain.FilterByCategory(snapshot, categories)
	}
	if len(snapshot) == 0 {
		h.writeError(w, http.StatusNotFound, "no data available with the selected filters")
		return nil, false
	}
	return snapshot, true
}

func parseCategories(r *http.Request) []string {
	raw := r.URL.Query().Get("categories")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	categories := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return categories
}

func wantsPNG(r *http.Request) bool {
	return r.URL.Query().Get("format") == "png"
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
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
