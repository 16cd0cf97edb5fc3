package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if c.Market.Name != "eastmoney" {
		return fmt.Errorf("market.name %q is not supported", c.Market.Name)
	}
	for key, val := range map[string]string{
		"market.quote_base_url":  c.Market.QuoteBaseURL,
		"market.hist_base_url":   c.Market.HistBaseURL,
		"market.search_base_url": c.Market.SearchBaseURL,
	} {
		if !strings.HasPrefix(val, "http://") && !strings.HasPrefix(val, "https://") {
			return fmt.Errorf("%s must be an http(s) URL", key)
		}
	}
	if c.Portfolio.InitialCash <= 0 {
		return fmt.Errorf("portfolio.initial_cash must be > 0")
	}
	if c.Trading.LotSize <= 0 {
		return fmt.Errorf("trading.lot_size must be > 0")
	}
	return nil
}
