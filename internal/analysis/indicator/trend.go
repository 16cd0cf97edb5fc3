package indicator

// Trend classes, from strongly bullish to strongly bearish.
const (
	TrendStrongUp       = "strong_up"
	TrendMildUp         = "mild_up"
	TrendSidewaysStrong = "sideways_strong"
	TrendSidewaysWeak   = "sideways_weak"
	TrendMildDown       = "mild_down"
	TrendStrongDown     = "strong_down"
)

// Slope strength labels relative to the mean price.
const (
	StrengthWeak     = "weak"
	StrengthModerate = "moderate"
	StrengthStrong   = "strong"
)

// TrendSummary 是线性拟合与加权打分的合并结果。
type TrendSummary struct {
	Slope     float64 `json:"slope"`
	Direction string  `json:"direction"` // up / down / flat
	Strength  string  `json:"strength"`
	Score     float64 `json:"score"`
	Class     string  `json:"class"`
}

type trendInput struct {
	closes   []float64
	price    float64
	sma5     float64
	sma20    float64
	sma60    float64
	macdDIF  float64
	rsiValue float64
}

// summarizeTrend combines six graded signals into a single score:
// price vs each MA (±1 each), full MA ordering (±2), slope sign (±1),
// MACD sign (±1) and RSI side of 50 (±0.5).
func summarizeTrend(in trendInput) TrendSummary {
	slope, meanPrice := olsSlope(in.closes)

	score := 0.0
	for _, ma := range []float64{in.sma5, in.sma20, in.sma60} {
		if in.price > ma {
			score++
		} else {
			score--
		}
	}
	switch {
	case in.sma5 > in.sma20 && in.sma20 > in.sma60:
		score += 2
	case in.sma5 < in.sma20 && in.sma20 < in.sma60:
		score -= 2
	}
	if slope > 0 {
		score++
	} else if slope < 0 {
		score--
	}
	if in.macdDIF > 0 {
		score++
	} else if in.macdDIF < 0 {
		score--
	}
	if in.rsiValue > 50 {
		score += 0.5
	} else if in.rsiValue < 50 {
		score -= 0.5
	}

	return TrendSummary{
		Slope:     slope,
		Direction: slopeDirection(slope),
		Strength:  slopeStrength(slope, meanPrice),
		Score:     score,
		Class:     classify(score),
	}
}

// olsSlope fits close = a + b*t over a 0-based index and returns b plus the
// mean price used to normalize strength.
func olsSlope(closes []float64) (slope, meanPrice float64) {
	n := float64(len(closes))
	if n < 2 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	return (n*sumXY - sumX*sumY) / denom, sumY / n
}

func slopeDirection(slope float64) string {
	switch {
	case slope > 0:
		return "up"
	case slope < 0:
		return "down"
	default:
		return "flat"
	}
}

// slopeStrength grades |slope| against 0.05% and 0.1% of the mean price.
func slopeStrength(slope, meanPrice float64) string {
	if meanPrice <= 0 {
		return StrengthWeak
	}
	rel := slope / meanPrice
	if rel < 0 {
		rel = -rel
	}
	switch {
	case rel >= 0.001:
		return StrengthStrong
	case rel >= 0.0005:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

func classify(score float64) string {
	switch {
	case score >= 4:
		return TrendStrongUp
	case score >= 2:
		return TrendMildUp
	case score >= 0:
		return TrendSidewaysStrong
	case score >= -2:
		return TrendSidewaysWeak
	case score >= -4:
		return TrendMildDown
	default:
		return TrendStrongDown
	}
}
