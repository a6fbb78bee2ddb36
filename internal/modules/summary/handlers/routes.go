package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all summary routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/batches", h.HandleListBatches)
	r.Get("/batches/{batchID}", h.HandleGetBatch)
	r.Get("/summary", h.HandleSummary)
}
