package tradehttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperdesk/internal/market"
	"paperdesk/internal/portfolio"
	"paperdesk/internal/tools"
	"paperdesk/internal/trader"
)

type fixedSource struct {
	price float64
}

func (f *fixedSource) LatestQuote(_ context.Context, code string) (market.Quote, error) {
	if f.price <= 0 {
		return market.Quote{}, market.ErrUnavailable
	}
	return market.Quote{Code: code, Price: f.price, UpdatedAt: time.Now()}, nil
}

func (f *fixedSource) DailyBars(_ context.Context, _ string, _, _ time.Time) ([]market.Bar, error) {
	bars := make([]market.Bar, 80)
	for i := range bars {
		c := 10 + float64(i)*0.1
		bars[i] = market.Bar{Date: fmt.Sprintf("2026-01-%02d", i%28+1), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars, nil
}

func (f *fixedSource) SearchSymbols(context.Context, string) ([]market.SymbolInfo, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	src := &fixedSource{price: 10}
	store := portfolio.NewStore(filepath.Join(t.TempDir(), "p.json"), 300000)
	desk := trader.NewDesk(src, store, trader.Options{})
	svc, err := tools.NewService(src, market.NewBarCache(time.Minute, 16), desk)
	require.NoError(t, err)

	srv, err := NewServer(ServerConfig{Addr: ":0", Service: svc, Market: src})
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec, payload := doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
}

func TestListTools(t *testing.T) {
	srv := newTestServer(t)
	rec, payload := doJSON(t, srv, http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	toolList := payload["tools"].([]any)
	names := make([]string, 0, len(toolList))
	for _, raw := range toolList {
		names = append(names, raw.(map[string]any)["name"].(string))
	}
	assert.Contains(t, names, "buy_stock")
	assert.Contains(t, names, "analyze_stock_trend_detailed")
	assert.Contains(t, names, "get_portfolio")
}

func TestInvokeToolOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec, payload := doJSON(t, srv, http.MethodPost, "/api/tools/buy_stock",
		`{"stock_code":"000001","stock_name":"平安银行","hands":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(299000), payload["cash_after"])

	rec, payload = doJSON(t, srv, http.MethodPost, "/api/tools/get_portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(300000), payload["total_assets_estimated"])
}

func TestDomainErrorsStillAnswer200(t *testing.T) {
	srv := newTestServer(t)

	rec, payload := doJSON(t, srv, http.MethodPost, "/api/tools/sell_stock",
		`{"stock_code":"000001","hands":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, payload["error"], "no holding")

	rec, payload = doJSON(t, srv, http.MethodPost, "/api/tools/nope", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, payload["error"], "unknown tool")
}

func TestMalformedBodyIs400(t *testing.T) {
	srv := newTestServer(t)
	rec, payload := doJSON(t, srv, http.MethodPost, "/api/tools/get_portfolio", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "JSON object")
}

type stubTradeLister struct {
	records []trader.JournalRecord
}

func (s *stubTradeLister) Recent(_ context.Context, limit int) ([]trader.JournalRecord, error) {
	if limit > 0 && limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func TestRecentTradesEndpoint(t *testing.T) {
	src := &fixedSource{price: 10}
	store := portfolio.NewStore(filepath.Join(t.TempDir(), "p.json"), 300000)
	desk := trader.NewDesk(src, store, trader.Options{})
	svc, err := tools.NewService(src, market.NewBarCache(time.Minute, 16), desk)
	require.NoError(t, err)

	lister := &stubTradeLister{records: []trader.JournalRecord{
		{TradeID: "t2", Action: "sell", Code: "000001", Price: 12, Hands: 1, Shares: 100},
		{TradeID: "t1", Action: "buy", Code: "000001", Price: 10, Hands: 1, Shares: 100},
	}}
	srv, err := NewServer(ServerConfig{Addr: ":0", Service: svc, Market: src, Trades: lister})
	require.NoError(t, err)

	rec, payload := doJSON(t, srv, http.MethodGet, "/api/trades?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), payload["count"])
	trades := payload["trades"].([]any)
	require.Len(t, trades, 1)
	assert.Equal(t, "t2", trades[0].(map[string]any)["trade_id"])
	assert.Equal(t, "sell", trades[0].(map[string]any)["action"])
}

func TestRecentTradesAbsentWithoutJournal(t *testing.T) {
	srv := newTestServer(t) // no TradeLister wired
	req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartPage(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/charts/000001", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")
}
