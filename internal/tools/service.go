// Package tools exposes the trading desk and analysis engine as a flat set of
// named operations with schema-checked arguments. Every call answers with a
// structured payload; domain failures become an `error` field in the payload
// instead of a transport error, so the calling agent can read and narrate them.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"paperdesk/internal/analysis/indicator"
	"paperdesk/internal/logger"
	"paperdesk/internal/market"
	"paperdesk/internal/trader"
)

// periodRows maps the analysis period keyword to trading-day rows.
// Unrecognized keywords fall back to 30.
var periodRows = map[string]int{
	"7d":   7,
	"30d":  30,
	"90d":  90,
	"180d": 180,
	"1y":   365,
}

const defaultPeriodDays = 30

// warmupRows extends the history fetch beyond the analysis window so the
// slowest indicator (SMA60 + MACD signal) has a full run-in.
const warmupRows = 80

// Service binds the market source, bar cache and trading desk behind the tool
// surface.
type Service struct {
	source   market.Source
	bars     *market.BarCache
	desk     *trader.Desk
	manifest *Manifest
}

func NewService(source market.Source, bars *market.BarCache, desk *trader.Desk) (*Service, error) {
	manifest, err := loadManifest()
	if err != nil {
		return nil, err
	}
	return &Service{source: source, bars: bars, desk: desk, manifest: manifest}, nil
}

// Manifest returns the discoverable tool set.
func (s *Service) Manifest() *Manifest { return s.manifest }

// Invoke dispatches one named tool call. The returned payload always carries
// either the result fields or an `error` field; it is never nil.
func (s *Service) Invoke(ctx context.Context, name string, args map[string]any) map[string]any {
	spec, ok := s.manifest.Lookup(name)
	if !ok {
		return errPayload(&UnknownToolError{Name: name})
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := spec.Validate(args); err != nil {
		return errPayload(&InvalidArgsError{Tool: spec.Name, Reason: err})
	}

	started := time.Now()
	var payload map[string]any
	switch spec.Name {
	case "get_stock_code_by_name":
		payload = s.Lookup(ctx, stringArg(args, "stock_name"))
	case "get_stock_quotes":
		payload = s.Quotes(ctx, stringSliceArg(args, "stock_codes"))
	case "analyze_stock_trend_detailed":
		payload = s.Analyze(ctx, stringArg(args, "stock_identifier"), stringArg(args, "period"))
	case "buy_stock":
		payload = s.Buy(ctx,
			stringArg(args, "stock_code"),
			stringArg(args, "stock_name"),
			intArg(args, "hands"),
			floatPtrArg(args, "stop_loss_pct"),
			floatPtrArg(args, "take_profit_pct"))
	case "sell_stock":
		payload = s.Sell(ctx, stringArg(args, "stock_code"), intArg(args, "hands"))
	case "get_portfolio":
		payload = s.Portfolio(ctx)
	default:
		payload = errPayload(&UnknownToolError{Name: spec.Name})
	}
	logger.Debugf("tool %s finished in %s", spec.Name, time.Since(started).Round(time.Millisecond))
	return payload
}

// Lookup resolves a (partial) stock name to candidate codes with live prices.
func (s *Service) Lookup(ctx context.Context, keyword string) map[string]any {
	keyword = strings.TrimSpace(keyword)
	candidates, err := s.source.SearchSymbols(ctx, keyword)
	if err != nil {
		return errPayload(err)
	}
	if len(candidates) == 0 {
		return errPayload(&NoMatchError{Keyword: keyword})
	}
	stocks := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		stocks = append(stocks, map[string]any{
			"stock_code":    c.Code,
			"stock_name":    c.Name,
			"current_price": c.Price,
			"change_pct":    c.ChangePct,
		})
	}
	return map[string]any{
		"query_name":    keyword,
		"matched_count": len(stocks),
		"stocks":        stocks,
	}
}

// Quotes fetches spot snapshots for a code list; codes without a tradable
// quote are silently skipped, matching a market screen that drops halted rows.
func (s *Service) Quotes(ctx context.Context, codes []string) map[string]any {
	quotes := make([]*market.Quote, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			q, err := s.source.LatestQuote(gctx, code)
			if err != nil {
				logger.Debugf("quote skipped for %s: %v", code, err)
				return nil
			}
			quotes[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	stocks := make(map[string]any, len(codes))
	for _, q := range quotes {
		if q == nil {
			continue
		}
		stocks[q.Code] = map[string]any{
			"stock_name":    q.Name,
			"current_price": q.Price,
			"change_pct":    q.ChangePct,
		}
	}
	return map[string]any{
		"update_time": time.Now().Format("2006-01-02 15:04:05"),
		"stocks":      stocks,
	}
}

// Analyze runs the full indicator report for a code or Chinese name over the
// requested period.
func (s *Service) Analyze(ctx context.Context, identifier, period string) map[string]any {
	days, ok := periodRows[period]
	if !ok {
		days = defaultPeriodDays
	}

	code, name, err := s.resolveIdentifier(ctx, identifier)
	if err != nil {
		return errPayload(err)
	}

	bars, err := s.historyFor(ctx, code, days)
	if err != nil {
		return errPayload(err)
	}

	report, err := indicator.Compute(bars, days)
	if err != nil {
		return errPayload(err)
	}

	if name == "" {
		name = code
	}
	return map[string]any{
		"metadata": map[string]any{
			"stock_name":    name,
			"stock_code":    code,
			"current_price": round2(report.CurrentPrice),
			"period":        period,
			"window_days":   days,
		},
		"indicators": report,
		"raw_sequence": map[string]any{
			"recent_data": report.Recent,
			"description": fmt.Sprintf("这是最近%d个交易日的收盘价与成交量异动比。", days),
		},
	}
}

// Buy places a virtual market buy.
func (s *Service) Buy(ctx context.Context, code, name string, hands int, stopLossPct, takeProfitPct *float64) map[string]any {
	res, err := s.desk.Buy(ctx, code, name, hands, stopLossPct, takeProfitPct)
	if err != nil {
		return errPayload(err)
	}
	return resultPayload(res)
}

// Sell places a virtual market sell.
func (s *Service) Sell(ctx context.Context, code string, hands int) map[string]any {
	res, err := s.desk.Sell(ctx, code, hands)
	if err != nil {
		return errPayload(err)
	}
	return resultPayload(res)
}

// Portfolio returns the valued account report.
func (s *Service) Portfolio(ctx context.Context) map[string]any {
	report, err := s.desk.Report(ctx)
	if err != nil {
		return errPayload(err)
	}
	return resultPayload(report)
}

// resolveIdentifier treats any identifier containing CJK runes as a name and
// resolves it via symbol search; multiple fuzzy matches without an exact hit
// are surfaced to the caller instead of guessed at.
func (s *Service) resolveIdentifier(ctx context.Context, identifier string) (code, name string, err error) {
	identifier = strings.TrimSpace(identifier)
	if !containsCJK(identifier) {
		return identifier, "", nil
	}
	candidates, err := s.source.SearchSymbols(ctx, identifier)
	if err != nil {
		return "", "", err
	}
	if len(candidates) == 0 {
		return "", "", &NoMatchError{Keyword: identifier}
	}
	if len(candidates) > 1 {
		var exact []market.SymbolInfo
		for _, c := range candidates {
			if c.Name == identifier {
				exact = append(exact, c)
			}
		}
		if len(exact) != 1 {
			return "", "", &AmbiguousMatchError{Keyword: identifier, Candidates: candidates}
		}
		candidates = exact
	}
	return candidates[0].Code, candidates[0].Name, nil
}

// historyFor fetches (or reuses) enough daily bars to cover the window plus
// indicator warm-up. Trading days thin out to roughly 5 per 7 calendar days,
// hence the doubled span.
func (s *Service) historyFor(ctx context.Context, code string, days int) ([]market.Bar, error) {
	cacheKey := fmt.Sprintf("%s:%d", code, days)
	if cached, ok := s.bars.Get(cacheKey); ok {
		return cached, nil
	}
	span := (days + warmupRows) * 2
	end := time.Now()
	start := end.AddDate(0, 0, -span)
	bars, err := s.source.DailyBars(ctx, code, start, end)
	if err != nil {
		return nil, err
	}
	s.bars.Put(cacheKey, bars)
	return bars, nil
}

func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// errPayload maps the error taxonomy onto the structured `error` payloads the
// calling agent expects, carrying supplementary fields where they help it
// recover (candidates, cash shortfall, holding size).
func errPayload(err error) map[string]any {
	payload := map[string]any{"error": err.Error()}

	var ambiguous *AmbiguousMatchError
	var funds *trader.InsufficientFundsError
	var oversell *trader.OverSellError
	var short *indicator.InsufficientDataError
	switch {
	case errors.As(err, &ambiguous):
		matched := make([]string, 0, len(ambiguous.Candidates))
		for _, c := range ambiguous.Candidates {
			matched = append(matched, fmt.Sprintf("%s(%s)", c.Name, c.Code))
		}
		sort.Strings(matched)
		payload["matched_stocks"] = matched
	case errors.As(err, &funds):
		payload["cash"] = funds.Cash
		payload["required"] = funds.Required
	case errors.As(err, &oversell):
		payload["holding_shares"] = oversell.Held
		payload["requested_shares"] = oversell.Requested
	case errors.As(err, &short):
		payload["have_rows"] = short.Have
		payload["need_rows"] = short.Want
	}
	return payload
}
