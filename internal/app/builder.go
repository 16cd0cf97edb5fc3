package app

import (
	"fmt"
	"time"

	pdcfg "paperdesk/internal/config"
	"paperdesk/internal/gateway/eastmoney"
	"paperdesk/internal/logger"
	"paperdesk/internal/market"
	"paperdesk/internal/portfolio"
	"paperdesk/internal/tools"
	"paperdesk/internal/trader"
	"paperdesk/internal/trader/journal"
	tradehttp "paperdesk/internal/transport/http"
)

// Builder 把配置逐层组装为可运行的 App：行情网关 → 账户 → 工具面 → HTTP。
type Builder struct {
	cfg *pdcfg.Config

	sourceOverride  market.Source
	journalOverride trader.Journal
}

type BuilderOption func(*Builder)

// WithMarketSource 注入替代行情源（测试用）。
func WithMarketSource(src market.Source) BuilderOption {
	return func(b *Builder) { b.sourceOverride = src }
}

// WithJournal 注入替代交易流水存储（测试用）。
func WithJournal(j trader.Journal) BuilderOption {
	return func(b *Builder) { b.journalOverride = j }
}

func NewBuilder(cfg *pdcfg.Config, opts ...BuilderOption) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Build() (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	source := b.sourceOverride
	if source == nil {
		source = eastmoney.New(eastmoney.Config{
			QuoteBaseURL:  cfg.Market.QuoteBaseURL,
			HistBaseURL:   cfg.Market.HistBaseURL,
			SearchBaseURL: cfg.Market.SearchBaseURL,
			HTTPTimeout:   time.Duration(cfg.Market.TimeoutSeconds) * time.Second,
			Retries:       cfg.Market.Retries,
		})
	}

	bars := market.NewBarCache(
		time.Duration(cfg.Market.CacheTTLSecs)*time.Second,
		cfg.Market.CacheMaxCodes,
	)

	jnl := b.journalOverride
	var jnlStore *journal.Store
	if jnl == nil && cfg.Portfolio.JournalPath != "" {
		store, err := journal.Open(cfg.Portfolio.JournalPath)
		if err != nil {
			// 流水是审计辅助，打不开时降级运行而不是拒绝启动
			logger.Warnf("trade journal unavailable, continuing without it: %v", err)
		} else {
			jnl = store
			jnlStore = store
		}
	}

	snapshots := portfolio.NewStore(cfg.Portfolio.SnapshotPath, cfg.Portfolio.InitialCash)
	desk := trader.NewDesk(source, snapshots, trader.Options{
		LotSize: cfg.Trading.LotSize,
		Journal: jnl,
	})

	svc, err := tools.NewService(source, bars, desk)
	if err != nil {
		return nil, fmt.Errorf("build tool service: %w", err)
	}

	httpCfg := tradehttp.ServerConfig{
		Addr:    cfg.App.HTTPAddr,
		Service: svc,
		Market:  source,
	}
	if jnlStore != nil {
		httpCfg.Trades = jnlStore
	}
	httpSrv, err := tradehttp.NewServer(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("build http server: %w", err)
	}

	return &App{
		cfg:     cfg,
		desk:    desk,
		service: svc,
		httpSrv: httpSrv,
		journal: jnlStore,
	}, nil
}
