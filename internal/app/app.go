// Package app 负责应用级编排：配置 → 依赖装配 → 启动 HTTP 服务。
package app

import (
	"context"
	"fmt"

	pdcfg "paperdesk/internal/config"
	"paperdesk/internal/logger"
	"paperdesk/internal/tools"
	"paperdesk/internal/trader"
	"paperdesk/internal/trader/journal"
	tradehttp "paperdesk/internal/transport/http"
)

// App 持有装配完成的服务；不启动。
type App struct {
	cfg     *pdcfg.Config
	desk    *trader.Desk
	service *tools.Service
	httpSrv *tradehttp.Server
	journal *journal.Store
}

// NewApp 根据配置构建应用对象。
func NewApp(cfg *pdcfg.Config, opts ...BuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return NewBuilder(cfg, opts...).Build()
}

// Run 启动 HTTP 服务并阻塞到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	logger.Infof("paperdesk listening on %s (market=%s)", a.httpSrv.Addr(), a.cfg.Market.Name)
	return a.httpSrv.Start(ctx)
}

// Close releases the journal's database handle.
func (a *App) Close() {
	if a == nil || a.journal == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		logger.Warnf("closing trade journal: %v", err)
	}
}

// Service exposes the tool surface (for tests and replay harnesses).
func (a *App) Service() *tools.Service {
	if a == nil {
		return nil
	}
	return a.service
}

// Desk exposes the trading desk.
func (a *App) Desk() *trader.Desk {
	if a == nil {
		return nil
	}
	return a.desk
}
