// Package indicator computes the technical snapshot used to justify trading
// decisions: moving averages, MACD, RSI, Bollinger bands, a linear trend fit,
// a weighted trend score, support/resistance and risk metrics.
package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"paperdesk/internal/market"
)

const (
	smaShort = 5
	smaMid   = 20
	smaLong  = 60

	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9

	rsiPeriod = 14

	bollPeriod = 20
	bollWidth  = 2.0

	srWindow = 20

	// minBars covers the longest MA plus the MACD warm-up so every signal
	// feeding the trend score has a valid latest value.
	minBars = smaLong + macdSignal
)

// InsufficientDataError reports a series shorter than the analysis window.
type InsufficientDataError struct {
	Have int
	Want int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d rows, need %d", e.Have, e.Want)
}

// MACDValue 是 MACD 的三元组：快慢线差、信号线与柱体。
type MACDValue struct {
	DIF       float64 `json:"dif"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bollinger 是布林带三条轨道的最新值。
type Bollinger struct {
	Upper float64 `json:"upper"`
	Mid   float64 `json:"mid"`
	Lower float64 `json:"lower"`
}

// SupportResistance 给出近 20 日支撑/压力与现价在两者间的位置。
type SupportResistance struct {
	Support     float64 `json:"support"`
	Resistance  float64 `json:"resistance"`
	PositionPct float64 `json:"position_pct"`
}

// RiskMetrics 是窗口内的波动与回撤统计。
type RiskMetrics struct {
	AnnualVolatilityPct float64 `json:"annual_volatility_pct"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
}

// RecentPoint mirrors the raw sequence handed to the decision-maker: close
// plus volume deviation from its own 5-day average.
type RecentPoint struct {
	Date         string  `json:"date"`
	Close        float64 `json:"close"`
	VolChangePct float64 `json:"vol_change_pct"`
}

// Report 汇总单只股票在一个分析窗口内的全部指标输出。
type Report struct {
	Window       int               `json:"window"`
	CurrentPrice float64           `json:"current_price"`
	SMA5         float64           `json:"ma5"`
	SMA20        float64           `json:"ma20"`
	SMA60        float64           `json:"ma60"`
	MACD         MACDValue         `json:"macd"`
	RSI          float64           `json:"rsi"`
	Boll         Bollinger         `json:"bollinger"`
	Trend        TrendSummary      `json:"trend"`
	SR           SupportResistance `json:"support_resistance"`
	Risk         RiskMetrics       `json:"risk"`
	VolumeSignal string            `json:"volume_signal"`
	Recent       []RecentPoint     `json:"recent_data,omitempty"`
}

// Compute builds the full report over the trailing `window` bars. The series
// must be chronological and long enough for both the window and the slowest
// indicator warm-up.
func Compute(bars []market.Bar, window int) (*Report, error) {
	if window <= 0 {
		return nil, fmt.Errorf("analysis window must be > 0")
	}
	need := window
	if need < minBars {
		need = minBars
	}
	if len(bars) < need {
		return nil, &InsufficientDataError{Have: len(bars), Want: need}
	}

	closes := market.Closes(bars)
	volumes := market.Volumes(bars)
	last := closes[len(closes)-1]

	sma5 := lastValid(talib.Sma(closes, smaShort))
	sma20 := lastValid(talib.Sma(closes, smaMid))
	sma60 := lastValid(talib.Sma(closes, smaLong))

	dif, signal, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
	macd := MACDValue{
		DIF:       lastValid(dif),
		Signal:    lastValid(signal),
		Histogram: lastValid(hist),
	}

	rsi := rsiValue(closes)

	upper, mid, lower := talib.BBands(closes, bollPeriod, bollWidth, bollWidth, talib.SMA)
	boll := Bollinger{
		Upper: lastValid(upper),
		Mid:   lastValid(mid),
		Lower: lastValid(lower),
	}

	windowCloses := closes[len(closes)-window:]
	trend := summarizeTrend(trendInput{
		closes:   windowCloses,
		price:    last,
		sma5:     sma5,
		sma20:    sma20,
		sma60:    sma60,
		macdDIF:  macd.DIF,
		rsiValue: rsi,
	})

	rep := &Report{
		Window:       window,
		CurrentPrice: last,
		SMA5:         sma5,
		SMA20:        sma20,
		SMA60:        sma60,
		MACD:         macd,
		RSI:          rsi,
		Boll:         boll,
		Trend:        trend,
		SR:           supportResistance(closes, last),
		Risk:         riskMetrics(windowCloses),
		VolumeSignal: volumeSignal(volumes[len(volumes)-window:]),
		Recent:       recentSequence(bars, window),
	}
	return rep, nil
}

// supportResistance uses the trailing 20 closes; when they collapse to one
// price the position is pinned at 50 to avoid a zero division.
func supportResistance(closes []float64, price float64) SupportResistance {
	tail := closes
	if len(tail) > srWindow {
		tail = tail[len(tail)-srWindow:]
	}
	support, resistance := tail[0], tail[0]
	for _, c := range tail[1:] {
		if c < support {
			support = c
		}
		if c > resistance {
			resistance = c
		}
	}
	pos := 50.0
	if resistance > support {
		pos = (price - support) / (resistance - support) * 100
	}
	return SupportResistance{Support: support, Resistance: resistance, PositionPct: pos}
}

func riskMetrics(closes []float64) RiskMetrics {
	if len(closes) < 2 {
		return RiskMetrics{}
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	mean, std := meanStd(returns)

	maxClose, minClose := closes[0], closes[0]
	for _, c := range closes[1:] {
		if c > maxClose {
			maxClose = c
		}
		if c < minClose {
			minClose = c
		}
	}
	drawdown := 0.0
	if maxClose > 0 {
		drawdown = (maxClose - minClose) / maxClose * 100
	}
	sharpe := 0.0
	if std > 0 {
		sharpe = mean / std * math.Sqrt(252)
	}
	return RiskMetrics{
		AnnualVolatilityPct: std * math.Sqrt(252) * 100,
		MaxDrawdownPct:      drawdown,
		SharpeRatio:         sharpe,
	}
}

func volumeSignal(volumes []float64) string {
	if len(volumes) == 0 {
		return "contracting"
	}
	sum := 0.0
	for _, v := range volumes {
		sum += v
	}
	avg := sum / float64(len(volumes))
	if avg > 0 && volumes[len(volumes)-1] > avg*1.2 {
		return "expanding"
	}
	return "contracting"
}

func recentSequence(bars []market.Bar, window int) []RecentPoint {
	volumes := market.Volumes(bars)
	volMA5 := talib.Sma(volumes, 5)
	tail := bars[len(bars)-window:]
	ma5Tail := volMA5[len(volMA5)-window:]
	out := make([]RecentPoint, 0, len(tail))
	for i, b := range tail {
		pt := RecentPoint{Date: b.Date, Close: b.Close}
		if ma5Tail[i] > 0 {
			pt.VolChangePct = (b.Volume/ma5Tail[i] - 1) * 100
		}
		out = append(out, pt)
	}
	return out
}

// rsiValue reads the latest RSI(14). talib reports 0 both for an all-loss
// series and for a flat one (zero average gain AND zero average loss); only
// the flat case is neutral, so disambiguate by inspecting the trailing deltas.
func rsiValue(closes []float64) float64 {
	series := talib.Rsi(closes, rsiPeriod)
	val := lastValid(series)
	if val != 0 {
		return val
	}
	start := len(closes) - rsiPeriod - 1
	if start < 0 {
		start = 0
	}
	for i := start + 1; i < len(closes); i++ {
		if closes[i] != closes[i-1] {
			return val
		}
	}
	return 50
}

func meanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	if len(vals) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(vals)-1))
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return 0
}
