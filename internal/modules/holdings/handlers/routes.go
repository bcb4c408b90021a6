package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetPortfolio)
		r.Delete("/", h.HandleClearPortfolio)
		r.Post("/holdings", h.HandleAddHolding)
		r.Post("/sample", h.HandleLoadSample)
		r.Post("/import", h.HandleImport)
		r.Get("/export", h.HandleExport)
		r.Get("/template", h.HandleTemplate)
		r.Post("/refresh-prices", h.HandleRefreshPrices)
	})
}
