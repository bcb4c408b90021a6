package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chart routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/allocation", h.HandleAllocation)
		r.Get("/performance", h.HandlePerformance)
		r.Get("/risk-return", h.HandleRiskReturn)
		r.Get("/historical", h.HandleHistorical)
	})
}
