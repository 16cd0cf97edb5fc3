// Package trader owns the virtual account: it validates and applies buy/sell
// intents against live prices and exposes a read-only valuation report.
package trader

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"paperdesk/internal/logger"
	"paperdesk/internal/market"
	"paperdesk/internal/pkg/trading"
	"paperdesk/internal/portfolio"
)

// Journal records executed trades. Append failures never fail the trade.
type Journal interface {
	Append(ctx context.Context, rec JournalRecord) error
}

// Desk serializes every operation on the single account behind one mutex:
// cash and average-cost updates are read-modify-write sequences with no
// other isolation.
type Desk struct {
	mu      sync.Mutex
	pf      *portfolio.Portfolio
	source  market.Source
	store   *portfolio.Store
	journal Journal
	lotSize int
}

type Options struct {
	LotSize int
	Journal Journal
}

// NewDesk loads the last snapshot (or the initial state) and is ready to trade.
func NewDesk(source market.Source, store *portfolio.Store, opts Options) *Desk {
	pf, status := store.Load()
	switch status {
	case portfolio.LoadedSnapshot:
		logger.Infof("desk: restored snapshot, cash=%.2f positions=%d", pf.Cash, len(pf.Positions))
	case portfolio.LoadedCorruptReset:
		logger.Warnf("desk: snapshot was corrupt, reset to initial cash %.2f", pf.Cash)
	default:
		logger.Infof("desk: starting fresh with cash %.2f", pf.Cash)
	}
	lot := opts.LotSize
	if lot <= 0 {
		lot = trading.DefaultLotSize
	}
	return &Desk{pf: pf, source: source, store: store, journal: opts.Journal, lotSize: lot}
}

// Buy executes a market buy of `hands` lots. Stop-loss/take-profit
// percentages are advisory: stored on the position and echoed back as
// absolute prices, never monitored or auto-executed.
func (d *Desk) Buy(ctx context.Context, code, name string, hands int, stopLossPct, takeProfitPct *float64) (*TradeResult, error) {
	if hands <= 0 {
		return nil, ErrInvalidQuantity
	}
	quote, err := d.source.LatestQuote(ctx, code)
	if err != nil {
		return nil, err
	}
	price := quote.Price
	shares := trading.SharesForHands(hands, d.lotSize)
	cost := trading.Cost(price, shares)

	d.mu.Lock()
	defer d.mu.Unlock()

	if cost > d.pf.Cash {
		return nil, &InsufficientFundsError{Cash: trading.Round2(d.pf.Cash), Required: trading.Round2(cost)}
	}

	d.pf.Cash = trading.Round2(d.pf.Cash - cost)
	pos := d.pf.Positions[code]
	if pos == nil {
		pos = &portfolio.Position{}
		d.pf.Positions[code] = pos
	}
	pos.AvgCost = trading.AverageCost(pos.AvgCost, pos.Shares, cost, shares)
	pos.Shares += shares
	if name != "" {
		pos.Name = name
	}
	if stopLossPct != nil {
		pos.StopLossPct = stopLossPct
	}
	if takeProfitPct != nil {
		pos.TakeProfitPct = takeProfitPct
	}

	res := &TradeResult{
		TradeID:   uuid.NewString(),
		Action:    "buy",
		Code:      code,
		Price:     trading.Round2(price),
		Hands:     hands,
		Shares:    shares,
		Cost:      trading.Round2(cost),
		CashAfter: d.pf.Cash,
		Position:  detailFor(pos),
	}
	d.persistLocked()
	d.journalize(ctx, JournalRecord{
		TradeID:   res.TradeID,
		Action:    "buy",
		Code:      code,
		Name:      pos.Name,
		Price:     res.Price,
		Hands:     hands,
		Shares:    shares,
		CashDelta: -res.Cost,
		CashAfter: d.pf.Cash,
		CreatedAt: time.Now(),
	})
	return res, nil
}

// Sell executes a market sell of `hands` lots against the held position.
// Profit is realized on average-cost basis; emptying the position removes it
// (and its advisory thresholds) entirely.
func (d *Desk) Sell(ctx context.Context, code string, hands int) (*TradeResult, error) {
	if hands <= 0 {
		return nil, ErrInvalidQuantity
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pos := d.pf.Positions[code]
	if pos == nil || pos.Shares <= 0 {
		return nil, &NoHoldingError{Code: code}
	}
	shares := trading.SharesForHands(hands, d.lotSize)
	if shares > pos.Shares {
		return nil, &OverSellError{Held: pos.Shares, Requested: shares}
	}

	quote, err := d.source.LatestQuote(ctx, code)
	if err != nil {
		return nil, err
	}
	price := quote.Price
	proceeds := trading.Cost(price, shares)
	profit := trading.Round2(trading.RealizedProfit(price, pos.AvgCost, shares))

	d.pf.Cash = trading.Round2(d.pf.Cash + proceeds)
	pos.Shares -= shares
	remaining := pos.Shares
	if remaining == 0 {
		delete(d.pf.Positions, code)
	}

	res := &TradeResult{
		TradeID:        uuid.NewString(),
		Action:         "sell",
		Code:           code,
		Price:          trading.Round2(price),
		Hands:          hands,
		Shares:         shares,
		Proceeds:       trading.Round2(proceeds),
		CashAfter:      d.pf.Cash,
		RealizedProfit: &profit,
		RemainingShare: &remaining,
	}
	d.persistLocked()
	d.journalize(ctx, JournalRecord{
		TradeID:        res.TradeID,
		Action:         "sell",
		Code:           code,
		Name:           pos.Name,
		Price:          res.Price,
		Hands:          hands,
		Shares:         shares,
		CashDelta:      res.Proceeds,
		CashAfter:      d.pf.Cash,
		RealizedProfit: profit,
		CreatedAt:      time.Now(),
	})
	return res, nil
}

// Report values every position at the latest quote, fetched concurrently.
// Codes without a quote are listed with nil price/value and contribute
// nothing to the total.
func (d *Desk) Report(ctx context.Context) (*PortfolioReport, error) {
	d.mu.Lock()
	snapshot := d.pf.Clone()
	d.mu.Unlock()

	codes := make([]string, 0, len(snapshot.Positions))
	for code := range snapshot.Positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	prices := make([]*float64, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			quote, err := d.source.LatestQuote(gctx, code)
			if err != nil {
				logger.Debugf("desk: no quote for %s in report: %v", code, err)
				return nil
			}
			p := quote.Price
			prices[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	report := &PortfolioReport{
		Cash:      trading.Round2(snapshot.Cash),
		Positions: make([]PositionValuation, 0, len(codes)),
	}
	total := snapshot.Cash
	for i, code := range codes {
		pos := snapshot.Positions[code]
		row := PositionValuation{
			Code:    code,
			Name:    pos.Name,
			Shares:  pos.Shares,
			AvgCost: trading.Round2(pos.AvgCost),
		}
		if prices[i] != nil {
			value := trading.Cost(*prices[i], pos.Shares)
			price := trading.Round2(*prices[i])
			rounded := trading.Round2(value)
			row.MarketPrice = &price
			row.MarketValue = &rounded
			total += value
		}
		report.Positions = append(report.Positions, row)
	}
	report.TotalAssetsEstimated = trading.Round2(total)
	return report, nil
}

// Snapshot returns a deep copy of the current account state.
func (d *Desk) Snapshot() *portfolio.Portfolio {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pf.Clone()
}

// persistLocked saves best-effort: a failed write leaves the in-memory state
// authoritative and only costs durability until the next successful save.
func (d *Desk) persistLocked() {
	if err := d.store.Save(d.pf); err != nil {
		logger.Errorf("desk: snapshot save failed (state kept in memory): %v", err)
	}
}

func (d *Desk) journalize(ctx context.Context, rec JournalRecord) {
	if d.journal == nil {
		return
	}
	if err := d.journal.Append(ctx, rec); err != nil {
		logger.Warnf("desk: journal append failed for %s: %v", rec.TradeID, err)
	}
}

func detailFor(pos *portfolio.Position) *PositionDetail {
	detail := &PositionDetail{
		Shares:        pos.Shares,
		AvgCost:       trading.Round2(pos.AvgCost),
		StopLossPct:   pos.StopLossPct,
		TakeProfitPct: pos.TakeProfitPct,
	}
	if pos.StopLossPct != nil {
		p := trading.Round2(trading.StopLossPrice(pos.AvgCost, *pos.StopLossPct))
		detail.StopLossPrice = &p
	}
	if pos.TakeProfitPct != nil {
		p := trading.Round2(trading.TakeProfitPrice(pos.AvgCost, *pos.TakeProfitPct))
		detail.TakeProfitPrice = &p
	}
	return detail
}
