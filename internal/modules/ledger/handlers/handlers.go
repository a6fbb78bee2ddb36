// Package handlers provides HTTP handlers for ledger mutations: settings,
// batch CRUD, and position CRUD including sell/unsell transitions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/modules/ledger"
	"github.com/linyuchen/oddlot/internal/modules/marketdata"
)

// Handler handles ledger HTTP requests
type Handler struct {
	settings  *ledger.SettingsRepository
	batches   *ledger.BatchRepository
	positions *ledger.PositionRepository
	lookup    marketdata.Lookup
	log       zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(
	settings *ledger.SettingsRepository,
	batches *ledger.BatchRepository,
	positions *ledger.PositionRepository,
	lookup marketdata.Lookup,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		settings:  settings,
		batches:   batches,
		positions: positions,
		lookup:    lookup,
		log:       log.With().Str("handler", "ledger").Logger(),
	}
}

// SettingsRequest updates the settings singleton.
type SettingsRequest struct {
	InitialCapital float64  `json:"initial_capital"`
	FeeDiscount    *float64 `json:"fee_discount"`
}

// BatchRequest creates or updates a batch.
type BatchRequest struct {
	Name             string  `json:"name"`
	StartDate        string  `json:"start_date"`
	AllocatedCapital float64 `json:"allocated_capital"`
}

// PositionRequest creates a position inside a batch.
type PositionRequest struct {
	StockCode string  `json:"stock_code"`
	StockName string  `json:"stock_name"`
	BuyPrice  float64 `json:"buy_price"`
	Shares    int64   `json:"shares"`
}

// PositionUpdateRequest edits a position's buy price and share count.
type PositionUpdateRequest struct {
	BuyPrice float64 `json:"buy_price"`
	Shares   int64   `json:"shares"`
}

// SellRequest marks a position as sold.
type SellRequest struct {
	SellPrice float64 `json:"sell_price"`
	SellDate  string  `json:"sell_date"`
}

// HandleGetSettings handles GET /api/config
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

// HandleUpdateSettings handles POST /api/config
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	feeDiscount := ledger.DefaultFeeDiscount
	if req.FeeDiscount != nil {
		feeDiscount = *req.FeeDiscount
	}
	if feeDiscount <= 0 || feeDiscount > 1 {
		http.Error(w, "fee_discount must be in (0, 1]", http.StatusBadRequest)
		return
	}

	if err := h.settings.Update(req.InitialCapital, feeDiscount); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"initial_capital": req.InitialCapital,
		"fee_discount":    feeDiscount,
	})
}

// HandleCreateBatch handles POST /api/batches
func (h *Handler) HandleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.StartDate == "" {
		req.StartDate = time.Now().Format("2006-01-02")
	}

	id, err := h.batches.Create(req.Name, req.StartDate, req.AllocatedCapital)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "batch_id": id})
}

// HandleUpdateBatch handles PUT /api/batches/{batchID}
func (h *Handler) HandleUpdateBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "batchID")
	if !ok {
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.batches.Update(id, req.Name, req.StartDate, req.AllocatedCapital); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleDeleteBatch handles DELETE /api/batches/{batchID}
func (h *Handler) HandleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "batchID")
	if !ok {
		return
	}

	if err := h.batches.Delete(id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleAddPosition handles POST /api/batches/{batchID}/stocks
func (h *Handler) HandleAddPosition(w http.ResponseWriter, r *http.Request) {
	batchID, ok := h.pathID(w, r, "batchID")
	if !ok {
		return
	}

	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Resolve the instrument name when the client didn't supply one.
	if req.StockName == "" {
		req.StockName = h.lookup.ResolveName(req.StockCode)
	}

	id, err := h.positions.Create(batchID, req.StockCode, req.StockName, req.BuyPrice, req.Shares)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"record_id":  id,
		"stock_name": req.StockName,
	})
}

// HandleUpdatePosition handles PUT /api/stocks/{recordID}
func (h *Handler) HandleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "recordID")
	if !ok {
		return
	}

	var req PositionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.positions.Update(id, req.BuyPrice, req.Shares); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleDeletePosition handles DELETE /api/stocks/{recordID}
func (h *Handler) HandleDeletePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "recordID")
	if !ok {
		return
	}

	if err := h.positions.Delete(id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleSellPosition handles POST /api/stocks/{recordID}/sell
func (h *Handler) HandleSellPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "recordID")
	if !ok {
		return
	}

	var req SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.SellDate == "" {
		req.SellDate = time.Now().Format("2006-01-02")
	}

	if err := h.positions.Sell(id, req.SellPrice, req.SellDate); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleUnsellPosition handles POST /api/stocks/{recordID}/unsell
func (h *Handler) HandleUnsellPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "recordID")
	if !ok {
		return
	}

	if err := h.positions.Unsell(id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// pathID parses an integer id URL parameter, writing a 400 on failure.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		h.log.Error().Err(err).Msg("Ledger operation failed")
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
