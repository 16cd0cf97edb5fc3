package trader

import "time"

// PositionDetail echoes the post-trade position back to the caller,
// including the derived absolute exit triggers when percentages are set.
type PositionDetail struct {
	Shares          int      `json:"shares"`
	AvgCost         float64  `json:"avg_cost"`
	StopLossPct     *float64 `json:"stop_loss_pct"`
	TakeProfitPct   *float64 `json:"take_profit_pct"`
	StopLossPrice   *float64 `json:"stop_loss_price"`
	TakeProfitPrice *float64 `json:"take_profit_price"`
}

// TradeResult 是单笔成交回执，不做持久化（流水另记 journal）。
type TradeResult struct {
	TradeID        string          `json:"trade_id"`
	Action         string          `json:"action"`
	Code           string          `json:"stock_code"`
	Price          float64         `json:"price"`
	Hands          int             `json:"hands"`
	Shares         int             `json:"shares"`
	Cost           float64         `json:"cost,omitempty"`
	Proceeds       float64         `json:"proceeds,omitempty"`
	CashAfter      float64         `json:"cash_after"`
	Position       *PositionDetail `json:"position,omitempty"`
	RealizedProfit *float64        `json:"realized_profit,omitempty"`
	RemainingShare *int            `json:"remaining_shares,omitempty"`
}

// PositionValuation is one row of the portfolio report; Price/Value are nil
// when the quote for that code is unavailable.
type PositionValuation struct {
	Code        string   `json:"stock_code"`
	Name        string   `json:"name"`
	Shares      int      `json:"shares"`
	AvgCost     float64  `json:"avg_cost"`
	MarketPrice *float64 `json:"market_price"`
	MarketValue *float64 `json:"market_value"`
}

// PortfolioReport 是账户的只读估值视图。
type PortfolioReport struct {
	Cash                 float64             `json:"cash"`
	Positions            []PositionValuation `json:"positions"`
	TotalAssetsEstimated float64             `json:"total_assets_estimated"`
}

// JournalRecord is the durable per-trade row handed to the journal.
type JournalRecord struct {
	TradeID        string    `json:"trade_id"`
	Action         string    `json:"action"`
	Code           string    `json:"stock_code"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	Hands          int       `json:"hands"`
	Shares         int       `json:"shares"`
	CashDelta      float64   `json:"cash_delta"`
	CashAfter      float64   `json:"cash_after"`
	RealizedProfit float64   `json:"realized_profit"`
	CreatedAt      time.Time `json:"created_at"`
}
