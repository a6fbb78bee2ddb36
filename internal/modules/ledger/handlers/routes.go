package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all ledger mutation routes. Read endpoints for
// batches live in the summary module, which attaches fee rollups.
func (h *Handler) RegisterRoutes(r chi.Router) {
	// Settings singleton
	r.Get("/config", h.HandleGetSettings)
	r.Post("/config", h.HandleUpdateSettings)

	// Batches
	r.Post("/batches", h.HandleCreateBatch)
	r.Put("/batches/{batchID}", h.HandleUpdateBatch)
	r.Delete("/batches/{batchID}", h.HandleDeleteBatch)

	// Positions
	r.Post("/batches/{batchID}/stocks", h.HandleAddPosition)
	r.Put("/stocks/{recordID}", h.HandleUpdatePosition)
	r.Delete("/stocks/{recordID}", h.HandleDeletePosition)
	r.Post("/stocks/{recordID}/sell", h.HandleSellPosition)
	r.Post("/stocks/{recordID}/unsell", h.HandleUnsellPosition)
}
