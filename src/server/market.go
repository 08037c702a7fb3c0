package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Market handlers: served through the tool registry so the API and the
// tools answer identically
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getMarket(c *gin.Context) {
	ticker := pathTicker(c)
	res, ok := s.callTool(c.Request.Context(), c, "get_stock_price", map[string]interface{}{"ticker": ticker})
	if !ok {
		return
	}
	if !res.Success {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Data not found for %s", ticker)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":    ticker,
		"data":      res.Result,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getMarketHistory(c *gin.Context) {
	ticker := pathTicker(c)
	res, ok := s.callTool(c.Request.Context(), c, "get_historical_data", map[string]interface{}{
		"ticker": ticker,
		"period": c.DefaultQuery("period", "1y"),
	})
	if !ok {
		return
	}
	if !res.Success {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("History not found for %s", ticker)})
		return
	}
	c.JSON(http.StatusOK, res.Result)
}

// -----------------------------------------------------------------------------

// getMarketInfo merges the company record, the knowledge-base entry and the
// live quote. It is a 404 only when none of them is known.
func (s *FastAPIServer) getMarketInfo(c *gin.Context) {
	ctx := c.Request.Context()
	ticker := pathTicker(c)

	res, ok := s.callTool(ctx, c, "get_company_info", map[string]interface{}{"ticker": ticker})
	if !ok {
		return
	}

	info := map[string]interface{}{"ticker": ticker}
	found := false
	if res.Success {
		for k, v := range res.Result {
			info[k] = v
		}
		found = true
	}

	if s.Knowledge != nil {
		if text, hit := s.Knowledge.LookupCompany(ctx, ticker); hit {
			info["knowledge"] = text
			found = true
		}
	}

	if quote := s.Tools.Call(ctx, "get_stock_price", map[string]interface{}{"ticker": ticker}); quote.Success {
		info["quote"] = quote.Result
		found = true
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Company not found: %s", ticker)})
		return
	}
	c.JSON(http.StatusOK, info)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getSectors(c *gin.Context) {
	res, ok := s.callTool(c.Request.Context(), c, "get_sector_performance", map[string]interface{}{
		"period": c.DefaultQuery("period", "1mo"),
	})
	if !ok {
		return
	}
	if res.Result == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, res.Result)
}

// -----------------------------------------------------------------------------
// Tool handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getTools(c *gin.Context) {
	if s.Tools == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "tools are not configured"})
		return
	}
	tools := s.Tools.ListTools()
	c.JSON(http.StatusOK, gin.H{"tools": tools, "count": len(tools)})
}

func (s *FastAPIServer) postToolCall(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	name := safeString(body, "tool_name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "tool_name is required"})
		return
	}

	res, ok := s.callTool(c.Request.Context(), c, name, safeMap(body, "arguments"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}
