// Package planner computes equal-split odd-lot allocations for a budget.
package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/domain"
	"github.com/linyuchen/oddlot/internal/fees"
	"github.com/linyuchen/oddlot/internal/modules/ledger"
	"github.com/linyuchen/oddlot/internal/modules/marketdata"
)

// Instrument is one planned purchase. A failed price lookup leaves all
// derived fields zero with price=0 as the failure marker; the instrument
// still appears in the results.
type Instrument struct {
	StockCode    string  `json:"stock_code"`
	StockName    string  `json:"stock_name"`
	Price        float64 `json:"price"`
	Shares       int64   `json:"shares"`
	Cost         float64 `json:"cost"`
	BuyFee       float64 `json:"buy_fee"`
	TotalWithFee float64 `json:"total_with_fee"`
}

// Result is the full allocation plan. Results preserve input order.
type Result struct {
	Budget            float64      `json:"budget"`
	AllocatedPerStock float64      `json:"allocated_per_stock"`
	NumStocks         int          `json:"num_stocks"`
	Results           []Instrument `json:"results"`
	TotalCost         float64      `json:"total_cost"`
	Remaining         float64      `json:"remaining"`
}

// Service plans allocations using live prices from the lookup collaborator.
type Service struct {
	lookup   marketdata.Lookup
	settings *ledger.SettingsRepository
	log      zerolog.Logger
}

// NewService creates a planner service.
func NewService(lookup marketdata.Lookup, settings *ledger.SettingsRepository, log zerolog.Logger) *Service {
	return &Service{
		lookup:   lookup,
		settings: settings,
		log:      log.With().Str("service", "planner").Logger(),
	}
}

// Plan splits the budget equally across the given stock codes and computes
// whole-share purchases per code.
//
// The per-stock allocation divides by the raw input count: blank entries are
// skipped from the results but still consume their budget share. That
// matches observed product behavior and is deliberate.
func (s *Service) Plan(budget float64, stockCodes []string) (*Result, error) {
	if budget <= 0 || len(stockCodes) == 0 {
		return nil, fmt.Errorf("%w: budget and at least one stock code are required", domain.ErrInvalidInput)
	}

	feeDiscount, err := s.settings.FeeDiscount()
	if err != nil {
		return nil, err
	}

	allocated := budget / float64(len(stockCodes))

	result := &Result{
		Budget:            budget,
		AllocatedPerStock: allocated,
		NumStocks:         len(stockCodes),
		Results:           make([]Instrument, 0, len(stockCodes)),
	}

	for _, code := range stockCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}

		inst := Instrument{
			StockCode: code,
			StockName: s.lookup.ResolveName(code),
		}

		if price, ok := s.lookup.FetchPrice(code); ok && price > 0 {
			inst.Price = price
			inst.Shares = int64(math.Floor(allocated / price))
			inst.Cost = float64(inst.Shares) * price
			inst.BuyFee = fees.BuyFee(inst.Cost, feeDiscount)
			inst.TotalWithFee = inst.Cost + inst.BuyFee
		} else {
			s.log.Warn().Str("code", code).Msg("Price lookup failed, planning zero shares")
		}

		result.TotalCost += inst.TotalWithFee
		result.Results = append(result.Results, inst)
	}

	result.Remaining = budget - result.TotalCost
	return result, nil
}
