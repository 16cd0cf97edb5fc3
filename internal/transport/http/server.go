// Package tradehttp serves the tool surface over HTTP for the agent runtime,
// plus a small kline chart page for eyeballing what the indicators saw.
package tradehttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paperdesk/internal/logger"
	"paperdesk/internal/market"
	"paperdesk/internal/tools"
	"paperdesk/internal/trader"
)

// TradeLister reads back the persisted trade log, newest first.
type TradeLister interface {
	Recent(ctx context.Context, limit int) ([]trader.JournalRecord, error)
}

// Server 提供 /api/tools 与 /charts 两组路由。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 HTTP 服务依赖。
type ServerConfig struct {
	Addr    string
	Service *tools.Service
	Market  market.Source
	Trades  TradeLister
}

// NewServer 构建 HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("http server requires a tool service")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9876"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &toolHandler{svc: cfg.Service}
	api := router.Group("/api")
	api.GET("/tools", h.listTools)
	api.POST("/tools/:name", h.invoke)

	if cfg.Trades != nil {
		th := &tradesHandler{trades: cfg.Trades}
		api.GET("/trades", th.recent)
	}

	if cfg.Market != nil {
		ch := &chartHandler{source: cfg.Market}
		router.GET("/charts/:code", ch.kline)
	}

	return &Server{addr: cfg.Addr, router: router}, nil
}

// requestLogger 记录接口调用，便于追踪 agent 行为。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			method, path, c.Writer.Status(), client, time.Since(start))
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }
