package marketdata

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/modules/ledger"
)

// RefreshedPosition reports one successfully refreshed position.
type RefreshedPosition struct {
	ID           int64   `json:"id"`
	StockCode    string  `json:"stock_code"`
	CurrentPrice float64 `json:"current_price"`
}

// Refresher updates stored current prices from the lookup collaborator.
//
// Each lookup is an independent, retryable unit: a failed lookup is logged
// and skipped, never aborting the rest of the run. Sold positions are left
// alone since valuation ignores their current price.
type Refresher struct {
	batches   *ledger.BatchRepository
	positions *ledger.PositionRepository
	lookup    Lookup
	log       zerolog.Logger
}

// NewRefresher creates a price refresher.
func NewRefresher(batches *ledger.BatchRepository, positions *ledger.PositionRepository, lookup Lookup, log zerolog.Logger) *Refresher {
	return &Refresher{
		batches:   batches,
		positions: positions,
		lookup:    lookup,
		log:       log.With().Str("service", "refresh").Logger(),
	}
}

// RefreshBatch refreshes every unsold position in one batch and returns the
// positions that actually got a new price.
func (r *Refresher) RefreshBatch(batchID int64) ([]RefreshedPosition, error) {
	if _, err := r.batches.GetByID(batchID); err != nil {
		return nil, err
	}

	positions, err := r.positions.GetByBatch(batchID)
	if err != nil {
		return nil, err
	}

	log := r.log.With().Str("run_id", uuid.NewString()).Int64("batch_id", batchID).Logger()

	updated := make([]RefreshedPosition, 0)
	for _, pos := range positions {
		if pos.IsSold {
			continue
		}

		price, ok := r.lookup.FetchPrice(pos.StockCode)
		if !ok {
			log.Warn().Str("code", pos.StockCode).Int64("position_id", pos.ID).Msg("Price lookup failed, keeping stored price")
			continue
		}

		if err := r.positions.UpdateCurrentPrice(pos.ID, price); err != nil {
			log.Error().Err(err).Int64("position_id", pos.ID).Msg("Failed to store refreshed price")
			continue
		}

		updated = append(updated, RefreshedPosition{
			ID:           pos.ID,
			StockCode:    pos.StockCode,
			CurrentPrice: price,
		})
	}

	log.Info().Int("updated", len(updated)).Int("positions", len(positions)).Msg("Batch price refresh finished")
	return updated, nil
}

// RefreshAll refreshes unsold positions across every batch and returns how
// many prices were updated.
func (r *Refresher) RefreshAll() (int, error) {
	positions, err := r.positions.GetAllWithBatch()
	if err != nil {
		return 0, err
	}

	log := r.log.With().Str("run_id", uuid.NewString()).Logger()

	total := 0
	for _, pos := range positions {
		if pos.IsSold {
			continue
		}

		price, ok := r.lookup.FetchPrice(pos.StockCode)
		if !ok {
			log.Warn().Str("code", pos.StockCode).Int64("position_id", pos.ID).Msg("Price lookup failed, keeping stored price")
			continue
		}

		if err := r.positions.UpdateCurrentPrice(pos.ID, price); err != nil {
			log.Error().Err(err).Int64("position_id", pos.ID).Msg("Failed to store refreshed price")
			continue
		}
		total++
	}

	log.Info().Int("updated", total).Int("positions", len(positions)).Msg("Full price refresh finished")
	return total, nil
}
