package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the metrics routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.HandleGetMetrics)
}
