// Package summary rolls fee calculations up across positions, batches, and
// the whole ledger, splitting realized from unrealized P&L.
package summary

import (
	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/fees"
	"github.com/linyuchen/oddlot/internal/modules/ledger"
)

// PositionDetail is a position with its fee breakdown merged in, the shape
// the batch detail endpoint serves per stock.
type PositionDetail struct {
	domain.Position
	fees.Breakdown
}

// BatchDetail is one batch with fully detailed positions.
type BatchDetail struct {
	domain.Batch
	Stocks []PositionDetail `json:"stocks"`
}

// BatchOverview is a batch with rollup figures, served by the batch list.
type BatchOverview struct {
	domain.Batch
	StockCount       int     `json:"stock_count"`
	TotalCost        float64 `json:"total_cost"`
	TotalMarketValue float64 `json:"total_market_value"`
	TotalFees        float64 `json:"total_fees"`
	TotalPnL         float64 `json:"total_pnl"`
	TotalPnLPct      float64 `json:"total_pnl_pct"`
}

// BatchSummary is one batch's slice of the overall summary.
type BatchSummary struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	StartDate        string  `json:"start_date"`
	TotalCost        float64 `json:"total_cost"`
	TotalMarketValue float64 `json:"total_market_value"`
	TotalFees        float64 `json:"total_fees"`
	PnL              float64 `json:"pnl"`
	PnLPct           float64 `json:"pnl_pct"`
	RealizedPnL      float64 `json:"realized_pnl"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	StockCount       int     `json:"stock_count"`
}

// Overall is the ledger-wide summary. Batches appear most recent first
// (start_date descending, id descending) — that ordering is a contract.
type Overall struct {
	TotalInvested    float64        `json:"total_invested"`
	TotalMarketValue float64        `json:"total_market_value"`
	TotalFees        float64        `json:"total_fees"`
	TotalPnL         float64        `json:"total_pnl"`
	TotalPnLPct      float64        `json:"total_pnl_pct"`
	RealizedPnL      float64        `json:"realized_pnl"`
	UnrealizedPnL    float64        `json:"unrealized_pnl"`
	BatchCount       int            `json:"batch_count"`
	Batches          []BatchSummary `json:"batches"`
}

// Service computes summaries from the ledger. The fee discount is read from
// the settings record per call and threaded into every fee calculation; no
// ambient configuration state.
type Service struct {
	batches   *ledger.BatchRepository
	positions *ledger.PositionRepository
	settings  *ledger.SettingsRepository
	log       zerolog.Logger
}

// NewService creates a summary service.
func NewService(batches *ledger.BatchRepository, positions *ledger.PositionRepository, settings *ledger.SettingsRepository, log zerolog.Logger) *Service {
	return &Service{
		batches:   batches,
		positions: positions,
		settings:  settings,
		log:       log.With().Str("service", "summary").Logger(),
	}
}

// SummarizeBatch folds fee breakdowns over one batch's positions. Pure
// aggregation: a zero-share or zero-price position contributes zeros, never
// an error.
func SummarizeBatch(batch domain.Batch, positions []domain.Position, feeDiscount float64) BatchSummary {
	s := BatchSummary{
		ID:         batch.ID,
		Name:       batch.Name,
		StartDate:  batch.StartDate,
		StockCount: len(positions),
	}

	for _, pos := range positions {
		b := fees.Compute(pos.BuyPrice, pos.Shares, pos.EffectivePrice(), feeDiscount)
		s.TotalCost += b.TotalCost
		s.TotalMarketValue += b.NetValue
		s.TotalFees += b.TotalFees
		if pos.IsSold {
			s.RealizedPnL += b.NetPnL
		} else {
			s.UnrealizedPnL += b.NetPnL
		}
	}

	s.PnL = s.TotalMarketValue - s.TotalCost
	s.PnLPct = fees.PnLPct(s.TotalMarketValue, s.TotalCost)
	return s
}

// BatchDetail returns one batch with per-position fee breakdowns attached.
func (s *Service) BatchDetail(batchID int64) (*BatchDetail, error) {
	batch, err := s.batches.GetByID(batchID)
	if err != nil {
		return nil, err
	}

	positions, err := s.positions.GetByBatch(batchID)
	if err != nil {
		return nil, err
	}

	feeDiscount, err := s.settings.FeeDiscount()
	if err != nil {
		return nil, err
	}

	detail := &BatchDetail{
		Batch:  *batch,
		Stocks: make([]PositionDetail, 0, len(positions)),
	}
	for _, pos := range positions {
		detail.Stocks = append(detail.Stocks, PositionDetail{
			Position:  pos,
			Breakdown: fees.Compute(pos.BuyPrice, pos.Shares, pos.EffectivePrice(), feeDiscount),
		})
	}

	return detail, nil
}

// BatchesOverview returns all batches with their rollup figures, preserving
// the repository's most-recent-first ordering.
func (s *Service) BatchesOverview() ([]BatchOverview, error) {
	batches, err := s.batches.GetAll()
	if err != nil {
		return nil, err
	}

	feeDiscount, err := s.settings.FeeDiscount()
	if err != nil {
		return nil, err
	}

	overviews := make([]BatchOverview, 0, len(batches))
	for _, batch := range batches {
		positions, err := s.positions.GetByBatch(batch.ID)
		if err != nil {
			return nil, err
		}

		bs := SummarizeBatch(batch, positions, feeDiscount)
		overviews = append(overviews, BatchOverview{
			Batch:            batch,
			StockCount:       bs.StockCount,
			TotalCost:        bs.TotalCost,
			TotalMarketValue: bs.TotalMarketValue,
			TotalFees:        bs.TotalFees,
			TotalPnL:         bs.PnL,
			TotalPnLPct:      bs.PnLPct,
		})
	}

	return overviews, nil
}

// SummarizeAll sums batch summaries into the overall ledger view.
func (s *Service) SummarizeAll() (*Overall, error) {
	batches, err := s.batches.GetAll()
	if err != nil {
		return nil, err
	}

	feeDiscount, err := s.settings.FeeDiscount()
	if err != nil {
		return nil, err
	}

	overall := &Overall{
		BatchCount: len(batches),
		Batches:    make([]BatchSummary, 0, len(batches)),
	}

	for _, batch := range batches {
		positions, err := s.positions.GetByBatch(batch.ID)
		if err != nil {
			return nil, err
		}

		bs := SummarizeBatch(batch, positions, feeDiscount)
		overall.TotalInvested += bs.TotalCost
		overall.TotalMarketValue += bs.TotalMarketValue
		overall.TotalFees += bs.TotalFees
		overall.RealizedPnL += bs.RealizedPnL
		overall.UnrealizedPnL += bs.UnrealizedPnL
		overall.Batches = append(overall.Batches, bs)
	}

	overall.TotalPnL = overall.TotalMarketValue - overall.TotalInvested
	overall.TotalPnLPct = fees.PnLPct(overall.TotalMarketValue, overall.TotalInvested)
	return overall, nil
}
