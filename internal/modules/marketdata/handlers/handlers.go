// Package handlers provides HTTP handlers for quote probes and price
// refresh operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/modules/marketdata"
)

// Handler handles market data HTTP requests
type Handler struct {
	lookup    marketdata.Lookup
	refresher *marketdata.Refresher
	log       zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(lookup marketdata.Lookup, refresher *marketdata.Refresher, log zerolog.Logger) *Handler {
	return &Handler{
		lookup:    lookup,
		refresher: refresher,
		log:       log.With().Str("handler", "marketdata").Logger(),
	}
}

// HandleStockInfo handles GET /api/stock-info/{code}
func (h *Handler) HandleStockInfo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	h.writeJSON(w, http.StatusOK, marketdata.GetInfo(h.lookup, code))
}

// HandleRefreshBatch handles POST /api/refresh-prices/{batchID}
func (h *Handler) HandleRefreshBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.ParseInt(chi.URLParam(r, "batchID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid batchID", http.StatusBadRequest)
		return
	}

	updated, err := h.refresher.RefreshBatch(batchID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": updated,
	})
}

// HandleRefreshAll handles POST /api/refresh-all-prices
func (h *Handler) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	total, err := h.refresher.RefreshAll()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"total_updated": total,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		h.log.Error().Err(err).Msg("Price refresh failed")
	}
	h.writeJSON(w, status, map[string]interface{}{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
