package eastmoney

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"paperdesk/internal/market"
)

// secIDFor maps a 6-digit stock code to Eastmoney's market-prefixed id.
// Shanghai listings (6xxxxx, 5xxxxx funds) use market 1, everything else
// (Shenzhen 0/3xxxxx, Beijing 4/8xxxxx) uses market 0.
func secIDFor(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return "", fmt.Errorf("invalid stock code %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid stock code %q", code)
		}
	}
	switch code[0] {
	case '5', '6', '9':
		return "1." + code, nil
	default:
		return "0." + code, nil
	}
}

func parseQuote(body []byte) (market.Quote, error) {
	if !gjson.ValidBytes(body) {
		return market.Quote{}, fmt.Errorf("%w: invalid json", market.ErrUnavailable)
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return market.Quote{}, fmt.Errorf("%w: empty quote payload", market.ErrUnavailable)
	}
	price := data.Get("f43").Float()
	// Suspended instruments report price "-" which gjson reads as 0.
	if price <= 0 {
		return market.Quote{}, fmt.Errorf("%w: no tradable price", market.ErrUnavailable)
	}
	return market.Quote{
		Code:      data.Get("f57").String(),
		Name:      data.Get("f58").String(),
		Price:     price,
		ChangePct: data.Get("f170").Float(),
	}, nil
}

func parseKlines(body []byte) ([]market.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", market.ErrUnavailable)
	}
	rows := gjson.GetBytes(body, "data.klines")
	if !rows.Exists() || !rows.IsArray() {
		return nil, fmt.Errorf("%w: empty kline payload", market.ErrUnavailable)
	}
	bars := make([]market.Bar, 0, len(rows.Array()))
	for _, row := range rows.Array() {
		bar, err := parseKlineRow(row.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", market.ErrUnavailable, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseKlineRow decodes one "date,open,close,high,low,volume" CSV row.
func parseKlineRow(row string) (market.Bar, error) {
	parts := strings.Split(row, ",")
	if len(parts) < 6 {
		return market.Bar{}, fmt.Errorf("malformed kline row %q", row)
	}
	nums := make([]float64, 5)
	for i := 0; i < 5; i++ {
		val, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("malformed kline row %q", row)
		}
		nums[i] = val
	}
	return market.Bar{
		Date:   parts[0],
		Open:   nums[0],
		Close:  nums[1],
		High:   nums[2],
		Low:    nums[3],
		Volume: nums[4],
	}, nil
}

func parseSuggest(body []byte) ([]market.SymbolInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", market.ErrUnavailable)
	}
	rows := gjson.GetBytes(body, "QuotationCodeTable.Data")
	if !rows.Exists() || rows.Type == gjson.Null {
		return []market.SymbolInfo{}, nil
	}
	var out []market.SymbolInfo
	for _, row := range rows.Array() {
		code := strings.TrimSpace(row.Get("Code").String())
		name := strings.TrimSpace(row.Get("Name").String())
		if len(code) != 6 || name == "" {
			continue
		}
		out = append(out, market.SymbolInfo{Code: code, Name: name})
	}
	return out, nil
}
