// Package handlers provides the HTTP surface of the analytics engine.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/nlagos/folio/internal/domain"
	"github.com/nlagos/folio/internal/modules/analytics"
	"github.com/nlagos/folio/internal/modules/display"
	"github.com/nlagos/folio/internal/modules/holdings"
	"github.com/rs/zerolog"
)

// Handler handles metrics HTTP requests.
type Handler struct {
	service *analytics.Service
	store   *holdings.Store
	log     zerolog.Logger
}

// NewHandler creates a new metrics handler.
func NewHandler(service *analytics.Service, store *holdings.Store, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		store:   store,
		log:     log.With().Str("handler", "metrics").Logger(),
	}
}

// HandleGetMetrics computes portfolio metrics over the current snapshot,
// optionally filtered with ?categories=Stocks,Crypto. Metrics ship twice:
// raw values (NaN as null) and a formatted block for direct display.
// GET /api/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := h.store.Snapshot()
	if categories := parseCategories(r); categories != nil {
		snapshot = domain.FilterByCategory(snapshot, categories)
	}

	m, err := h.service.Aggregate(snapshot)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPortfolio) {
			h.writeError(w, http.StatusNotFound, "no data available with the selected filters")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": h.store.SnapshotID(),
		"is_sample":   h.store.IsSample(),
		"metrics": map[string]interface{}{
			"total_value":           nullableFloat(m.TotalValue),
			"total_cost":            nullableFloat(m.TotalCost),
			"total_gain_loss":       nullableFloat(m.TotalGainLoss),
			"total_gain_loss_pct":   nullableFloat(m.TotalGainLossPct),
			"weighted_return":       nullableFloat(m.WeightedReturn),
			"volatility":            nullableFloat(m.Volatility),
			"category_allocation":   m.CategoryAllocation,
			"diversification_score": nullableFloat(m.DiversificationScore),
			"holding_count":         m.HoldingCount,
		},
		"formatted": map[string]string{
			"total_value":           display.FormatCurrency(m.TotalValue),
			"total_cost":            display.FormatCurrency(m.TotalCost),
			"total_gain_loss":       display.FormatCurrency(m.TotalGainLoss),
			"total_gain_loss_pct":   display.FormatPercent(m.TotalGainLossPct),
			"weighted_return":       display.FormatPercent(m.WeightedReturn),
			"volatility":            display.FormatPercent(m.Volatility),
			"diversification_score": display.FormatScore(m.DiversificationScore),
		},
	})
}

// parseCategories reads the optional ?categories= filter. nil means no
// filtering; an explicit empty list still filters (to nothing).
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
