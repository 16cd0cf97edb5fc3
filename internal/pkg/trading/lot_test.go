package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharesForHands(t *testing.T) {
	assert.Equal(t, 200, SharesForHands(2, 100))
	assert.Equal(t, 100, SharesForHands(1, 0)) // zero lot size falls back to 100
}

func TestCostAvoidsFloatDrift(t *testing.T) {
	// 0.1*300 in raw float64 arithmetic is 30.000000000000004
	assert.Equal(t, 30.0, Cost(0.1, 300))
	assert.Equal(t, 360000.0, Cost(1800, 200))
}

func TestAverageCost(t *testing.T) {
	// first entry: 100 shares at 1500
	avg := AverageCost(0, 0, 150000, 100)
	assert.Equal(t, 1500.0, avg)

	// add 100 shares at 1600 → avg 1550
	avg = AverageCost(avg, 100, 160000, 100)
	assert.Equal(t, 1550.0, avg)
}

func TestAverageCostOrderIndependent(t *testing.T) {
	a := AverageCost(AverageCost(0, 0, Cost(10, 100), 100), 100, Cost(20, 200), 200)
	b := AverageCost(AverageCost(0, 0, Cost(20, 200), 200), 200, Cost(10, 100), 100)
	assert.InDelta(t, a, b, 1e-9)
}

func TestRealizedProfit(t *testing.T) {
	assert.Equal(t, 5000.0, RealizedProfit(1550, 1500, 100))
	assert.Equal(t, -5000.0, RealizedProfit(1450, 1500, 100))
}

func TestStopAndTakeProfitPrices(t *testing.T) {
	assert.Equal(t, 1425.0, StopLossPrice(1500, 5))
	assert.Equal(t, 1725.0, TakeProfitPrice(1500, 15))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, 0.0, Round2(0))
}
