// Package trading provides lot and money arithmetic for the virtual desk.
package trading

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultLotSize is the A-share board lot: 1 hand = 100 shares.
const DefaultLotSize = 100

// SharesForHands converts a hand count to shares.
func SharesForHands(hands, lotSize int) int {
	if lotSize <= 0 {
		lotSize = DefaultLotSize
	}
	return hands * lotSize
}

func dec(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}

// Cost returns price*shares without float accumulation error.
func Cost(price float64, shares int) float64 {
	f, _ := dec(price).Mul(decimal.NewFromInt(int64(shares))).Float64()
	return f
}

// AverageCost recomputes the volume-weighted average entry price after
// adding `cost` worth of `addShares` to an existing position.
func AverageCost(oldAvg float64, oldShares int, cost float64, addShares int) float64 {
	total := oldShares + addShares
	if total <= 0 {
		return 0
	}
	sum := dec(oldAvg).Mul(decimal.NewFromInt(int64(oldShares))).Add(dec(cost))
	f, _ := sum.Div(decimal.NewFromInt(int64(total))).Float64()
	return f
}

// RealizedProfit computes (price - avgCost) * shares on average-cost basis.
func RealizedProfit(price, avgCost float64, shares int) float64 {
	f, _ := dec(price).Sub(dec(avgCost)).Mul(decimal.NewFromInt(int64(shares))).Float64()
	return f
}

// StopLossPrice derives the absolute trigger below the entry: avg*(1-pct/100).
func StopLossPrice(avgCost, pct float64) float64 {
	f, _ := dec(avgCost).Mul(decimal.NewFromInt(1).Sub(dec(pct).Div(decimal.NewFromInt(100)))).Float64()
	return f
}

// TakeProfitPrice derives the absolute trigger above the entry: avg*(1+pct/100).
func TakeProfitPrice(avgCost, pct float64) float64 {
	f, _ := dec(avgCost).Mul(decimal.NewFromInt(1).Add(dec(pct).Div(decimal.NewFromInt(100)))).Float64()
	return f
}

// Round2 rounds to 2 decimal places for user-facing money values.
func Round2(val float64) float64 {
	f, _ := dec(val).Round(2).Float64()
	return f
}
