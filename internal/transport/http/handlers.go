package tradehttp

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paperdesk/internal/tools"
	"paperdesk/internal/trader"
)

type toolHandler struct {
	svc *tools.Service
}

// listTools serves the manifest so callers can discover names and schemas.
func (h *toolHandler) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Manifest())
}

// invoke runs one tool call. Domain failures still answer 200 with an `error`
// field in the body: the agent reads them as content, not transport faults.
func (h *toolHandler) invoke(c *gin.Context) {
	var args map[string]any
	if err := c.ShouldBindJSON(&args); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}
	payload := h.svc.Invoke(c.Request.Context(), c.Param("name"), args)
	c.JSON(http.StatusOK, payload)
}

type tradesHandler struct {
	trades TradeLister
}

// recent lists the latest journaled trades, newest first.
func (h *tradesHandler) recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.trades.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []trader.JournalRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "trades": records})
}
