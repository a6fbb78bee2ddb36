// Package domain contains the core data models shared across modules.
// The domain layer is pure: no database, HTTP, or market-data dependencies.
package domain

// Settings is the singleton application configuration record. It is created
// once by the schema and only ever updated, never deleted.
type Settings struct {
	ID             int64   `json:"id"`
	InitialCapital float64 `json:"initial_capital"`
	FeeDiscount    float64 `json:"fee_discount"` // broker discount multiplier in (0,1], e.g. 0.28
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// Batch is a named, dated group of positions sharing an allocated capital pool.
type Batch struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	StartDate        string  `json:"start_date"` // YYYY-MM-DD
	AllocatedCapital float64 `json:"allocated_capital"`
	CreatedAt        string  `json:"created_at"`
}

// Position is one tracked odd-lot purchase. While held, it is marked to
// CurrentPrice; once sold, SellPrice/SellDate take over for valuation.
type Position struct {
	ID             int64   `json:"id"`
	BatchID        int64   `json:"batch_id"`
	StockCode      string  `json:"stock_code"`
	StockName      string  `json:"stock_name"`
	BuyPrice       float64 `json:"buy_price"`
	Shares         int64   `json:"shares"`
	CurrentPrice   float64 `json:"current_price"` // 0 until first refresh
	PriceUpdatedAt *string `json:"price_updated_at"`
	IsSold         bool    `json:"is_sold"`
	SellPrice      float64 `json:"sell_price"` // meaningful only when IsSold
	SellDate       *string `json:"sell_date"`  // meaningful only when IsSold
	CreatedAt      string  `json:"created_at"`
}

// EffectivePrice returns the price used for valuation: the sell price for
// sold positions, otherwise the last fetched market price.
func (p Position) EffectivePrice() float64 {
	if p.IsSold {
		return p.SellPrice
	}
	return p.CurrentPrice
}

// PositionWithBatch is a position joined with its owning batch, used by the
// all-batches summary path.
type PositionWithBatch struct {
	Position
	BatchName string `json:"batch_name"`
	BatchDate string `json:"batch_date"`
}
