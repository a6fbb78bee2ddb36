// Package fees computes trading costs, taxes, and P&L for a single position.
//
// All functions are pure. The rates follow Taiwan exchange conventions:
// brokerage fee 0.1425% (scaled by the broker's negotiated discount) and
// securities transaction tax 0.3% on the sell side. Fees and tax are
// truncated toward zero to whole dollars, the way brokers actually bill,
// rather than rounded.
package fees

import "github.com/shopspring/decimal"

// Policy constants, not configuration. Only the fee discount multiplier is
// user-tunable (Settings.FeeDiscount).
const (
	StandardFeeRate   = 0.001425
	SecuritiesTaxRate = 0.003
)

var (
	standardFeeRate   = decimal.NewFromFloat(StandardFeeRate)
	securitiesTaxRate = decimal.NewFromFloat(SecuritiesTaxRate)
)

// Breakdown holds the full cost/fee/tax/P&L result for one position.
// Field names are the serialization contract; amounts are whole-currency
// monetary values and NetPnLPct is already multiplied by 100.
type Breakdown struct {
	BuyAmount  float64 `json:"buy_amount"`
	BuyFee     float64 `json:"buy_fee"`
	SellAmount float64 `json:"sell_amount"`
	SellFee    float64 `json:"sell_fee"`
	SellTax    float64 `json:"sell_tax"`
	TotalFees  float64 `json:"total_fees"`
	TotalCost  float64 `json:"total_cost"`
	NetValue   float64 `json:"net_value"`
	NetPnL     float64 `json:"net_pnl"`
	NetPnLPct  float64 `json:"net_pnl_pct"`
}

// Compute calculates the breakdown for one position.
//
// effectivePrice is the sell price for sold positions, otherwise the current
// market price; 0 means "no market price yet" and yields zero sell-side
// figures. Negative inputs are coerced to zero; this function never fails.
//
// The decimal package is used for the intermediate math so that fee
// truncation is exact: with float64, buy_amount*rate*discount lands on
// values like 39.899999999999995 and truncates to the wrong dollar.
func Compute(buyPrice float64, shares int64, effectivePrice, feeDiscount float64) Breakdown {
	if buyPrice < 0 {
		buyPrice = 0
	}
	if shares < 0 {
		shares = 0
	}
	if effectivePrice < 0 {
		effectivePrice = 0
	}

	qty := decimal.NewFromInt(shares)
	discount := decimal.NewFromFloat(feeDiscount)

	buyAmount := decimal.NewFromFloat(buyPrice).Mul(qty)
	sellAmount := decimal.NewFromFloat(effectivePrice).Mul(qty)

	buyFee := buyAmount.Mul(standardFeeRate).Mul(discount).Floor()
	sellFee := sellAmount.Mul(standardFeeRate).Mul(discount).Floor()
	sellTax := sellAmount.Mul(securitiesTaxRate).Floor()

	totalCost := buyAmount.Add(buyFee)
	netValue := sellAmount.Sub(sellFee).Sub(sellTax)
	netPnL := netValue.Sub(totalCost)

	b := Breakdown{
		BuyAmount:  buyAmount.InexactFloat64(),
		BuyFee:     buyFee.InexactFloat64(),
		SellAmount: sellAmount.InexactFloat64(),
		SellFee:    sellFee.InexactFloat64(),
		SellTax:    sellTax.InexactFloat64(),
		TotalFees:  buyFee.Add(sellFee).Add(sellTax).InexactFloat64(),
		TotalCost:  totalCost.InexactFloat64(),
		NetValue:   netValue.InexactFloat64(),
		NetPnL:     netPnL.InexactFloat64(),
	}
	b.NetPnLPct = PnLPct(b.NetValue, b.TotalCost)
	return b
}

// PnLPct returns (netValue/totalCost - 1) * 100 with a zero-guard: an
// undefined ratio (totalCost <= 0) reports 0 instead of NaN.
func PnLPct(netValue, totalCost float64) float64 {
	if totalCost <= 0 {
		return 0
	}
	return (netValue/totalCost - 1) * 100
}

// BuyFee returns the truncated buy-side brokerage fee for an amount. Used by
// the allocation planner, which has no sell side.
func BuyFee(amount, feeDiscount float64) float64 {
	if amount < 0 {
		amount = 0
	}
	return decimal.NewFromFloat(amount).
		Mul(standardFeeRate).
		Mul(decimal.NewFromFloat(feeDiscount)).
		Floor().
		InexactFloat64()
}
