package config

import "strings"

const (
	defaultAppEnv       = "dev"
	defaultAppLogLevel  = "info"
	defaultAppHTTPAddr  = ":9876"
	defaultMarketName   = "eastmoney"
	defaultQuoteBase    = "https://push2.eastmoney.com"
	defaultHistBase     = "https://push2his.eastmoney.com"
	defaultSearchBase   = "https://searchapi.eastmoney.com"
	defaultTimeoutSecs  = 10
	defaultRetries      = 1
	defaultCacheTTL     = 300
	defaultCacheCodes   = 128
	defaultSnapshotPath = "data/portfolio_state.json"
	defaultJournalPath  = "data/trade_journal.db"
	defaultInitialCash  = 300000
	defaultLotSize      = 100
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Market.applyDefaults()
	c.Portfolio.applyDefaults()
	c.Trading.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if strings.TrimSpace(a.Env) == "" {
		a.Env = defaultAppEnv
	}
	if strings.TrimSpace(a.LogLevel) == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
}

func (m *MarketConfig) applyDefaults() {
	if strings.TrimSpace(m.Name) == "" {
		m.Name = defaultMarketName
	}
	if strings.TrimSpace(m.QuoteBaseURL) == "" {
		m.QuoteBaseURL = defaultQuoteBase
	}
	if strings.TrimSpace(m.HistBaseURL) == "" {
		m.HistBaseURL = defaultHistBase
	}
	if strings.TrimSpace(m.SearchBaseURL) == "" {
		m.SearchBaseURL = defaultSearchBase
	}
	if m.TimeoutSeconds <= 0 {
		m.TimeoutSeconds = defaultTimeoutSecs
	}
	if m.Retries < 0 {
		m.Retries = defaultRetries
	}
	if m.CacheTTLSecs <= 0 {
		m.CacheTTLSecs = defaultCacheTTL
	}
	if m.CacheMaxCodes <= 0 {
		m.CacheMaxCodes = defaultCacheCodes
	}
}

func (p *PortfolioConfig) applyDefaults() {
	if strings.TrimSpace(p.SnapshotPath) == "" {
		p.SnapshotPath = defaultSnapshotPath
	}
	if strings.TrimSpace(p.JournalPath) == "" {
		p.JournalPath = defaultJournalPath
	}
	if p.InitialCash <= 0 {
		p.InitialCash = defaultInitialCash
	}
}

func (t *TradingConfig) applyDefaults() {
	if t.LotSize <= 0 {
		t.LotSize = defaultLotSize
	}
}
