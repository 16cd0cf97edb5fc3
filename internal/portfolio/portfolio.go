// Package portfolio owns the virtual account state and its snapshot lifecycle.
package portfolio

// Position 是单只股票的持仓记录。
// StopLossPct/TakeProfitPct are advisory exit thresholds relative to AvgCost;
// nothing in the desk watches the market to enforce them.
type Position struct {
	Name          string   `json:"name"`
	Shares        int      `json:"shares"`
	AvgCost       float64  `json:"avg_cost"`
	StopLossPct   *float64 `json:"stop_loss_pct"`
	TakeProfitPct *float64 `json:"take_profit_pct"`
}

// Portfolio 是虚拟账户的全部状态：现金 + 持仓。
type Portfolio struct {
	Cash      float64              `json:"cash"`
	Positions map[string]*Position `json:"positions"`
}

// New returns an empty portfolio seeded with the starting balance.
func New(initialCash float64) *Portfolio {
	return &Portfolio{
		Cash:      initialCash,
		Positions: make(map[string]*Position),
	}
}

// Clone deep-copies the portfolio so snapshots can escape the desk lock.
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	out := &Portfolio{
		Cash:      p.Cash,
		Positions: make(map[string]*Position, len(p.Positions)),
	}
	for code, pos := range p.Positions {
		cp := *pos
		if pos.StopLossPct != nil {
			v := *pos.StopLossPct
			cp.StopLossPct = &v
		}
		if pos.TakeProfitPct != nil {
			v := *pos.TakeProfitPct
			cp.TakeProfitPct = &v
		}
		out.Positions[code] = &cp
	}
	return out
}
