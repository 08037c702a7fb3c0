package server

import (
	"context"
	"net/http"
	"strings"

	"finnie/src/models"
	"finnie/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// pathTicker normalizes the :ticker parameter and applies typo corrections.
func pathTicker(c *gin.Context) string {
	t, _ := utils.CorrectTicker(utils.NormalizeTicker(c.Param("ticker")))
	return t
}

// -----------------------------------------------------------------------------

// callTool runs a registered tool. ok is false when the registry is missing,
// in which case a 503 has already been written.
func (s *FastAPIServer) callTool(ctx context.Context, c *gin.Context, name string, args map[string]interface{}) (models.MToolResult, bool) {
	if s.Tools == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "tools are not configured"})
		return models.MToolResult{}, false
	}
	return s.Tools.Call(ctx, name, args), true
}

// -----------------------------------------------------------------------------

func safeString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// -----------------------------------------------------------------------------

func safeMap(data map[string]interface{}, key string) map[string]interface{} {
	if m, ok := data[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
