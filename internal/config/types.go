package config

// Config 是 paperdesk 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Market    MarketConfig    `toml:"market"`
	Portfolio PortfolioConfig `toml:"portfolio"`
	Trading   TradingConfig   `toml:"trading"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// MarketConfig 描述行情数据源的访问方式。
type MarketConfig struct {
	Name           string `toml:"name"`
	QuoteBaseURL   string `toml:"quote_base_url"`
	HistBaseURL    string `toml:"hist_base_url"`
	SearchBaseURL  string `toml:"search_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        int    `toml:"retries"`
	CacheTTLSecs   int    `toml:"cache_ttl_seconds"`
	CacheMaxCodes  int    `toml:"cache_max_codes"`
}

// PortfolioConfig 控制虚拟账户的持久化与初始资金。
type PortfolioConfig struct {
	SnapshotPath string  `toml:"snapshot_path"`
	JournalPath  string  `toml:"journal_path"`
	InitialCash  float64 `toml:"initial_cash"`
}

// TradingConfig 保存交易规则参数。
type TradingConfig struct {
	LotSize int `toml:"lot_size"` // 1手 = lot_size 股
}
