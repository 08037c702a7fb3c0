package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finnie/src/helpers"
	"finnie/src/llm"
	"finnie/src/models"
	"finnie/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// chatRequest is the body of POST /api/chat and of each /ws/chat message.
type chatRequest struct {
	Message       string             `json:"message" binding:"required,min=1,max=5000"`
	SessionID     string             `json:"session_id"`
	UserID        string             `json:"user_id"`
	LLMProvider   string             `json:"llm_provider"`
	LLMModel      string             `json:"llm_model"`
	LLMAPIKey     string             `json:"llm_api_key"`
	PortfolioData *models.MPortfolio `json:"portfolio_data"`
}

type chatResponse struct {
	Response       string                  `json:"response"`
	SessionID      string                  `json:"session_id"`
	AgentUsed      *models.Role            `json:"agent_used"`
	Intent         models.Intent           `json:"intent"`
	Visualizations []models.MVisualization `json:"visualizations"`
	Disclaimers    []string                `json:"disclaimers"`
	LatencyMS      int64                   `json:"latency_ms"`
	Timestamp      string                  `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Chat handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) postChat(c *gin.Context) {
	start := time.Now()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "message must not be blank"})
		return
	}

	res, err := s.runChat(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Agent processing error: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Response:       res.Package.FinalText,
		SessionID:      req.SessionID,
		AgentUsed:      res.Package.PrimaryRole,
		Intent:         res.Intent,
		Visualizations: res.Package.Visualizations,
		Disclaimers:    res.Package.Disclaimers,
		LatencyMS:      time.Since(start).Milliseconds(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

// -----------------------------------------------------------------------------

// runChat runs one turn for a host request. With a user id and a chat store
// the exchange is persisted and recent history is fed into the turn; store
// trouble is logged and never fails the turn. req.SessionID is set to the
// conversation actually used.
func (s *FastAPIServer) runChat(ctx context.Context, req *chatRequest) (*models.MTurnResult, error) {
	if s.Orchestrator == nil {
		return nil, errors.New("orchestrator not configured")
	}

	// 1. Conversation and history
	history := ""
	persist := s.Store != nil && req.UserID != ""
	isNew := false
	if persist {
		var err error
		history, isNew, err = s.openConversation(ctx, req)
		if err != nil {
			s.Logger.Warning("Chat history unavailable for user %s: %v", req.UserID, err)
			persist = false
		}
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	// 2. Turn
	res, err := s.Orchestrator.RunTurn(ctx, models.MTurnRequest{
		UserInput: req.Message,
		SessionID: req.SessionID,
		Provider:  llm.ResolveProvider(s.Config.LLM, req.LLMProvider, req.LLMModel, req.LLMAPIKey),
		Portfolio: req.PortfolioData,
		Tickers:   utils.ResolveTickers(req.Message),
		History:   history,
	})
	if err != nil {
		return nil, err
	}

	// 3. Persist the exchange
	if persist {
		s.saveExchange(ctx, req, res, isNew)
	}
	return res, nil
}

// openConversation resolves req.SessionID to a stored conversation, creating
// one when the id is empty or unknown. It returns the user's history summary.
func (s *FastAPIServer) openConversation(ctx context.Context, req *chatRequest) (string, bool, error) {
	if _, err := s.Store.UpsertUser(ctx, models.MUser{ID: req.UserID}); err != nil {
		return "", false, err
	}
	history, err := s.Store.ConversationSummary(ctx, req.UserID)
	if err != nil {
		return "", false, err
	}

	if req.SessionID != "" {
		conv, err := s.Store.GetConversation(ctx, req.SessionID)
		if err == nil && conv.UserID == req.UserID {
			return history, conv.MessageCount == 0, nil
		}
		if err != nil && !errors.Is(err, helpers.ErrNotFound) {
			return "", false, err
		}
	}

	id, err := s.Store.CreateConversation(ctx, req.UserID, "")
	if err != nil {
		return "", false, err
	}
	req.SessionID = id
	return history, true, nil
}

func (s *FastAPIServer) saveExchange(ctx context.Context, req *chatRequest, res *models.MTurnResult, isNew bool) {
	agent := ""
	if res.Package.PrimaryRole != nil {
		agent = string(*res.Package.PrimaryRole)
	}

	if _, err := s.Store.SaveMessage(ctx, req.SessionID, "user", req.Message, ""); err != nil {
		s.Logger.Warning("Failed to save user message: %v", err)
		return
	}
	if _, err := s.Store.SaveMessage(ctx, req.SessionID, "assistant", res.Package.FinalText, agent); err != nil {
		s.Logger.Warning("Failed to save assistant message: %v", err)
	}
	if isNew {
		if err := s.Store.AutoTitle(ctx, req.SessionID, req.Message); err != nil {
			s.Logger.Warning("Failed to title conversation: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------
// History handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHistory(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "chat history is not configured"})
		return
	}
	userID := c.Param("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	convs, err := s.Store.ListConversations(c.Request.Context(), userID, limit)
	if err != nil {
		s.Logger.Error("List conversations for %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":       userID,
		"conversations": convs,
		"count":         len(convs),
	})
}

func (s *FastAPIServer) deleteHistory(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "chat history is not configured"})
		return
	}
	userID := c.Param("user_id")

	if err := s.Store.ClearUserHistory(c.Request.Context(), userID); err != nil {
		s.Logger.Error("Clear history for %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to clear history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "user_id": userID})
}
