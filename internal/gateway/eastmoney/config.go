package eastmoney

import (
	"strings"
	"time"
)

// Config 描述东方财富行情接口的访问参数。
type Config struct {
	QuoteBaseURL  string
	HistBaseURL   string
	SearchBaseURL string
	HTTPTimeout   time.Duration
	Retries       int
	UserAgent     string
}

const (
	defaultQuoteBase  = "https://push2.eastmoney.com"
	defaultHistBase   = "https://push2his.eastmoney.com"
	defaultSearchBase = "https://searchapi.eastmoney.com"
	defaultTimeout    = 10 * time.Second
	defaultUserAgent  = "paperdesk/1.0"
)

func (c Config) withDefaults() Config {
	final := c
	if strings.TrimSpace(final.QuoteBaseURL) == "" {
		final.QuoteBaseURL = defaultQuoteBase
	}
	if strings.TrimSpace(final.HistBaseURL) == "" {
		final.HistBaseURL = defaultHistBase
	}
	if strings.TrimSpace(final.SearchBaseURL) == "" {
		final.SearchBaseURL = defaultSearchBase
	}
	if final.HTTPTimeout <= 0 {
		final.HTTPTimeout = defaultTimeout
	}
	if final.Retries < 0 {
		final.Retries = 0
	}
	if strings.TrimSpace(final.UserAgent) == "" {
		final.UserAgent = defaultUserAgent
	}
	final.QuoteBaseURL = strings.TrimRight(final.QuoteBaseURL, "/")
	final.HistBaseURL = strings.TrimRight(final.HistBaseURL, "/")
	final.SearchBaseURL = strings.TrimRight(final.SearchBaseURL, "/")
	return final
}
