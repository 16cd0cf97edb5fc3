// Package eastmoney implements market.Source against the Eastmoney push2 API.
// Every provider failure collapses into market.ErrUnavailable: the trading
// core only distinguishes "have a price" from "don't".
package eastmoney

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"paperdesk/internal/logger"
	"paperdesk/internal/market"
)

type Source struct {
	cfg    Config
	client *http.Client
}

var _ market.Source = (*Source)(nil)

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	return &Source{
		cfg:    final,
		client: &http.Client{Timeout: final.HTTPTimeout},
	}
}

// LatestQuote fetches the realtime snapshot for a single stock code.
func (s *Source) LatestQuote(ctx context.Context, code string) (market.Quote, error) {
	secID, err := secIDFor(code)
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: %v", market.ErrUnavailable, err)
	}
	q := url.Values{}
	q.Set("secid", secID)
	q.Set("invt", "2")
	q.Set("fltt", "2")
	q.Set("fields", "f43,f57,f58,f170")
	body, err := s.get(ctx, s.cfg.QuoteBaseURL+"/api/qt/stock/get?"+q.Encode())
	if err != nil {
		return market.Quote{}, err
	}
	quote, err := parseQuote(body)
	if err != nil {
		return market.Quote{}, err
	}
	quote.UpdatedAt = time.Now()
	return quote, nil
}

// DailyBars fetches forward-adjusted daily klines inside [start, end].
func (s *Source) DailyBars(ctx context.Context, code string, start, end time.Time) ([]market.Bar, error) {
	secID, err := secIDFor(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", market.ErrUnavailable, err)
	}
	q := url.Values{}
	q.Set("secid", secID)
	q.Set("klt", "101") // daily
	q.Set("fqt", "1")   // forward adjusted
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56")
	body, err := s.get(ctx, s.cfg.HistBaseURL+"/api/qt/stock/kline/get?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return parseKlines(body)
}

// SearchSymbols resolves a name fragment to candidate codes via the suggest
// API, then best-effort enriches each candidate with its current quote.
func (s *Source) SearchSymbols(ctx context.Context, keyword string) ([]market.SymbolInfo, error) {
	q := url.Values{}
	q.Set("input", keyword)
	q.Set("type", "14")
	q.Set("count", "10")
	body, err := s.get(ctx, s.cfg.SearchBaseURL+"/api/suggest/get?"+q.Encode())
	if err != nil {
		return nil, err
	}
	infos, err := parseSuggest(body)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		quote, err := s.LatestQuote(ctx, infos[i].Code)
		if err != nil {
			logger.Debugf("eastmoney: quote enrich failed for %s: %v", infos[i].Code, err)
			continue
		}
		infos[i].Price = quote.Price
		infos[i].ChangePct = quote.ChangePct
	}
	return infos, nil
}

// get performs the request with one bounded retry on transport-level errors.
// HTTP status and payload problems fail immediately: the provider answered.
func (s *Source) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", market.ErrUnavailable, ctx.Err())
			}
		}
		body, retryable, err := s.getOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		logger.Debugf("eastmoney: transient fetch error, retrying: %v", err)
	}
	return nil, fmt.Errorf("%w: %v", market.ErrUnavailable, lastErr)
}

func (s *Source) getOnce(ctx context.Context, rawURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, true, err
	}
	return data, false, nil
}
