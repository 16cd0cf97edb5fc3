package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperdesk/internal/market"
	"paperdesk/internal/portfolio"
	"paperdesk/internal/trader"
)

type fakeSource struct {
	quotes  map[string]market.Quote
	bars    map[string][]market.Bar
	symbols []market.SymbolInfo
}

func (f *fakeSource) LatestQuote(_ context.Context, code string) (market.Quote, error) {
	q, ok := f.quotes[code]
	if !ok {
		return market.Quote{}, fmt.Errorf("quote for %s: %w", code, market.ErrUnavailable)
	}
	return q, nil
}

func (f *fakeSource) DailyBars(_ context.Context, code string, _, _ time.Time) ([]market.Bar, error) {
	bars, ok := f.bars[code]
	if !ok {
		return nil, fmt.Errorf("history for %s: %w", code, market.ErrUnavailable)
	}
	return bars, nil
}

func (f *fakeSource) SearchSymbols(context.Context, string) ([]market.SymbolInfo, error) {
	return f.symbols, nil
}

func risingBars(n int) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = market.Bar{
			Date:   fmt.Sprintf("2026-%02d-%02d", i/28+1, i%28+1),
			Open:   c, High: c, Low: c, Close: c,
			Volume: 10000,
		}
	}
	return bars
}

func newTestService(t *testing.T, src *fakeSource) *Service {
	t.Helper()
	store := portfolio.NewStore(filepath.Join(t.TempDir(), "portfolio_state.json"), 300000)
	desk := trader.NewDesk(src, store, trader.Options{})
	svc, err := NewService(src, market.NewBarCache(time.Minute, 16), desk)
	require.NoError(t, err)
	return svc
}

func TestInvokeUnknownTool(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	payload := svc.Invoke(context.Background(), "does_not_exist", nil)
	assert.Contains(t, payload["error"], "unknown tool")
}

func TestInvokeRejectsSchemaViolations(t *testing.T) {
	svc := newTestService(t, &fakeSource{})

	payload := svc.Invoke(context.Background(), "buy_stock", map[string]any{
		"stock_code": "600519",
		"stock_name": "贵州茅台",
		"hands":      0,
	})
	assert.Contains(t, payload["error"], "invalid arguments for buy_stock")

	payload = svc.Invoke(context.Background(), "sell_stock", map[string]any{
		"stock_code": "not-a-code",
		"hands":      1,
	})
	assert.Contains(t, payload["error"], "invalid arguments for sell_stock")
}

func TestInvokeAcceptsStringNumbers(t *testing.T) {
	src := &fakeSource{quotes: map[string]market.Quote{
		"000001": {Code: "000001", Name: "平安银行", Price: 10},
	}}
	svc := newTestService(t, src)

	payload := svc.Invoke(context.Background(), "buy_stock", map[string]any{
		"stock_code": "000001",
		"stock_name": "平安银行",
		"hands":      "2",
	})
	require.NotContains(t, payload, "error")
	assert.Equal(t, float64(200), payload["shares"])
}

func TestLookupReturnsCandidates(t *testing.T) {
	src := &fakeSource{symbols: []market.SymbolInfo{
		{Code: "600036", Name: "招商银行", Price: 35.2, ChangePct: 1.1},
	}}
	svc := newTestService(t, src)

	payload := svc.Lookup(context.Background(), "招商")
	assert.Equal(t, 1, payload["matched_count"])
	stocks := payload["stocks"].([]map[string]any)
	assert.Equal(t, "600036", stocks[0]["stock_code"])
	assert.Equal(t, "招商银行", stocks[0]["stock_name"])
}

func TestLookupNoMatch(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	payload := svc.Lookup(context.Background(), "不存在的股票")
	assert.Contains(t, payload["error"], "no stock matching")
}

func TestAnalyzeByCode(t *testing.T) {
	src := &fakeSource{bars: map[string][]market.Bar{"600519": risingBars(120)}}
	svc := newTestService(t, src)

	payload := svc.Analyze(context.Background(), "600519", "30d")
	require.NotContains(t, payload, "error")

	meta := payload["metadata"].(map[string]any)
	assert.Equal(t, "600519", meta["stock_code"])
	assert.Equal(t, 30, meta["window_days"])
	assert.Equal(t, 219.0, meta["current_price"])
	assert.NotNil(t, payload["indicators"])
	assert.NotNil(t, payload["raw_sequence"])
}

func TestAnalyzeUnknownPeriodDefaultsTo30(t *testing.T) {
	src := &fakeSource{bars: map[string][]market.Bar{"600519": risingBars(120)}}
	svc := newTestService(t, src)

	payload := svc.Analyze(context.Background(), "600519", "2w")
	require.NotContains(t, payload, "error")
	meta := payload["metadata"].(map[string]any)
	assert.Equal(t, 30, meta["window_days"])
}

func TestAnalyzeResolvesExactNameAmongMatches(t *testing.T) {
	src := &fakeSource{
		symbols: []market.SymbolInfo{
			{Code: "000001", Name: "平安银行"},
			{Code: "601318", Name: "中国平安"},
		},
		bars: map[string][]market.Bar{"000001": risingBars(120)},
	}
	svc := newTestService(t, src)

	payload := svc.Analyze(context.Background(), "平安银行", "30d")
	require.NotContains(t, payload, "error")
	meta := payload["metadata"].(map[string]any)
	assert.Equal(t, "000001", meta["stock_code"])
	assert.Equal(t, "平安银行", meta["stock_name"])
}

func TestAnalyzeAmbiguousNameListsCandidates(t *testing.T) {
	src := &fakeSource{symbols: []market.SymbolInfo{
		{Code: "000001", Name: "平安银行"},
		{Code: "601318", Name: "中国平安"},
	}}
	svc := newTestService(t, src)

	payload := svc.Analyze(context.Background(), "平安", "30d")
	require.Contains(t, payload, "error")
	matched := payload["matched_stocks"].([]string)
	assert.ElementsMatch(t, []string{"平安银行(000001)", "中国平安(601318)"}, matched)
}

func TestAnalyzeShortHistory(t *testing.T) {
	src := &fakeSource{bars: map[string][]market.Bar{"600519": risingBars(10)}}
	svc := newTestService(t, src)

	payload := svc.Analyze(context.Background(), "600519", "30d")
	require.Contains(t, payload, "error")
	assert.Equal(t, 10, payload["have_rows"])
}

func TestInvokeTradeAndPortfolioFlow(t *testing.T) {
	src := &fakeSource{quotes: map[string]market.Quote{
		"000001": {Code: "000001", Name: "平安银行", Price: 10},
	}}
	svc := newTestService(t, src)
	ctx := context.Background()

	payload := svc.Invoke(ctx, "buy_stock", map[string]any{
		"stock_code":    "000001",
		"stock_name":    "平安银行",
		"hands":         1,
		"stop_loss_pct": 5,
	})
	require.NotContains(t, payload, "error")
	assert.Equal(t, float64(299000), payload["cash_after"])

	payload = svc.Invoke(ctx, "sell_stock", map[string]any{
		"stock_code": "000001",
		"hands":      1,
	})
	require.NotContains(t, payload, "error")
	assert.Equal(t, float64(0), payload["realized_profit"])
	assert.Equal(t, float64(0), payload["remaining_shares"])

	payload = svc.Invoke(ctx, "get_portfolio", nil)
	require.NotContains(t, payload, "error")
	assert.Equal(t, float64(300000), payload["cash"])
	assert.Equal(t, float64(300000), payload["total_assets_estimated"])
}

func TestInvokeOverSellCarriesHoldingDetails(t *testing.T) {
	src := &fakeSource{quotes: map[string]market.Quote{
		"000001": {Code: "000001", Name: "平安银行", Price: 10},
	}}
	svc := newTestService(t, src)
	ctx := context.Background()

	require.NotContains(t, svc.Invoke(ctx, "buy_stock", map[string]any{
		"stock_code": "000001", "stock_name": "平安银行", "hands": 1,
	}), "error")

	payload := svc.Invoke(ctx, "sell_stock", map[string]any{
		"stock_code": "000001", "hands": 3,
	})
	require.Contains(t, payload, "error")
	assert.Equal(t, 100, payload["holding_shares"])
	assert.Equal(t, 300, payload["requested_shares"])
}

func TestQuotesSkipsUnavailableCodes(t *testing.T) {
	src := &fakeSource{quotes: map[string]market.Quote{
		"000001": {Code: "000001", Name: "平安银行", Price: 10, ChangePct: 0.5},
	}}
	svc := newTestService(t, src)

	payload := svc.Quotes(context.Background(), []string{"000001", "688001"})
	stocks := payload["stocks"].(map[string]any)
	assert.Contains(t, stocks, "000001")
	assert.NotContains(t, stocks, "688001")
}
