package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stock-info/{code}", h.HandleStockInfo)
	r.Post("/refresh-prices/{batchID}", h.HandleRefreshBatch)
	r.Post("/refresh-all-prices", h.HandleRefreshAll)
}
