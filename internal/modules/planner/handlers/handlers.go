// Package handlers provides the HTTP handler for allocation planning.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/modules/planner"
)

// Handler handles planner HTTP requests
type Handler struct {
	service *planner.Service
	log     zerolog.Logger
}

// NewHandler creates a new planner handler
func NewHandler(service *planner.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "planner").Logger(),
	}
}

// PlanRequest asks for an equal-split allocation of a budget.
type PlanRequest struct {
	Budget float64  `json:"budget"`
	Stocks []string `json:"stocks"`
}

// HandlePlan handles POST /api/calculate
func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Plan(req.Budget, req.Stocks)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusBadRequest
		} else {
			h.log.Error().Err(err).Msg("Allocation planning failed")
		}
		h.writeJSON(w, status, map[string]interface{}{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// RegisterRoutes registers all planner routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/calculate", h.HandlePlan)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
