package market

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks any provider failure: network, bad payload, suspended
// instrument, zero price. Callers treat all of them as "no data right now".
var ErrUnavailable = errors.New("market data unavailable")

// Source supplies quotes, daily history and a name lookup for A-share codes.
type Source interface {
	// LatestQuote returns the current price snapshot for one stock code.
	LatestQuote(ctx context.Context, code string) (Quote, error)

	// DailyBars returns daily OHLCV rows inside [start, end], oldest first.
	DailyBars(ctx context.Context, code string, start, end time.Time) ([]Bar, error)

	// SearchSymbols does a fuzzy match of keyword against stock names.
	SearchSymbols(ctx context.Context, keyword string) ([]SymbolInfo, error)
}
