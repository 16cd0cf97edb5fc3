package tradehttp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	talib "github.com/markcheno/go-talib"

	"paperdesk/internal/market"
)

const (
	chartWidthPx  = 1200
	chartHeightPx = 600
	chartBarSpan  = 180
)

type chartHandler struct {
	source market.Source
}

// kline renders the trailing six months of daily bars with MA5/20/60 overlays
// as a self-contained HTML page.
func (h *chartHandler) kline(c *gin.Context) {
	code := c.Param("code")
	end := time.Now()
	start := end.AddDate(0, 0, -chartBarSpan*2)
	bars, err := h.source.DailyBars(c.Request.Context(), code, start, end)
	if err != nil {
		c.String(http.StatusBadGateway, "history unavailable for %s: %v", code, err)
		return
	}
	if len(bars) > chartBarSpan {
		bars = bars[len(bars)-chartBarSpan:]
	}
	if len(bars) == 0 {
		c.String(http.StatusNotFound, "no bars for %s", code)
		return
	}

	kline := buildKlineChart(code, bars)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := kline.Render(c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "render failed: %v", err)
	}
}

func buildKlineChart(code string, bars []market.Bar) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  fmt.Sprintf("%dpx", chartWidthPx),
			Height: fmt.Sprintf("%dpx", chartHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s 日线（前复权）", code),
			Left:  "left",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)

	xAxis := make([]string, len(bars))
	klineData := make([]opts.KlineData, len(bars))
	for i, b := range bars {
		xAxis[i] = b.Date
		klineData[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
	}
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", klineData)

	closes := market.Closes(bars)
	maLine := charts.NewLine()
	maLine.SetXAxis(xAxis)
	maLine.AddSeries("MA5", toLineData(talib.Sma(closes, 5)))
	maLine.AddSeries("MA20", toLineData(talib.Sma(closes, 20)))
	maLine.AddSeries("MA60", toLineData(talib.Sma(closes, 60)))
	kline.Overlap(maLine)

	return kline
}

func toLineData(series []float64) []opts.LineData {
	data := make([]opts.LineData, len(series))
	for i, v := range series {
		if v != v { // NaN warm-up rows render as gaps
			data[i] = opts.LineData{Value: nil}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}
