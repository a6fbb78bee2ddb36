package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/linyuchen/oddlot/internal/database"
)

// SystemHandlers serves health and resource usage endpoints.
type SystemHandlers struct {
	db  *database.DB
	log zerolog.Logger
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(db *database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:  db,
		log: log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth handles GET /api/system/health. Runs the full database
// integrity check, so it is heavier than the liveness probe at /health.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	var dbError string
	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("Database health check failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
		dbError = err.Error()
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status":   status,
		"database": h.db.Name(),
		"db_error": dbError,
	})
}

// HandleStats handles GET /api/system/stats
func (h *SystemHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := h.systemStats()

	response := map[string]interface{}{
		"cpu_percent": cpuPct,
		"ram_percent": ramPct,
	}

	if stats, err := h.db.GetStats(); err == nil {
		response["database"] = map[string]interface{}{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
		}
	} else {
		h.log.Warn().Err(err).Msg("Failed to read database stats")
	}

	h.writeJSON(w, http.StatusOK, response)
}

// systemStats returns CPU and RAM usage percentages. The 100ms CPU sample
// keeps the endpoint fast at the cost of a noisier reading.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
