// Package handlers provides HTTP handlers for batch and ledger summaries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/modules/summary"
)

// Handler handles summary HTTP requests
type Handler struct {
	service *summary.Service
	log     zerolog.Logger
}

// NewHandler creates a new summary handler
func NewHandler(service *summary.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "summary").Logger(),
	}
}

// HandleListBatches handles GET /api/batches
func (h *Handler) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.service.BatchesOverview()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overviews)
}

// HandleGetBatch handles GET /api/batches/{batchID}
func (h *Handler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "batchID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid batchID", http.StatusBadRequest)
		return
	}

	detail, err := h.service.BatchDetail(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

// HandleSummary handles GET /api/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	overall, err := h.service.SummarizeAll()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overall)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		h.log.Error().Err(err).Msg("Summary computation failed")
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
