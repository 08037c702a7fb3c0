package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/llm"
	"finnie/src/logger"
	"finnie/src/mcp"
	"finnie/src/models"
	"finnie/src/utils"

	"github.com/gin-gonic/gin"
)

// Version is reported on /api/health.
const Version = "2.0.0"

// AgentCount is the six responders plus the compliance and synthesis stages.
const AgentCount = 8

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

// Components are the collaborators the routes call. Store, Knowledge,
// Scheduler and Errors may be nil.
type Components struct {
	Orchestrator interfaces.ITurnRunner
	Tools        *mcp.ToolRegistry
	Market       interfaces.IMarketData
	Knowledge    interfaces.IKnowledgeBase
	Store        interfaces.IChatStore
	Scheduler    *utils.MarketScheduler
	Errors       *helpers.ErrorHandler
}

type FastAPIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Components

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, logger *logger.Logger, comps Components) *FastAPIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:     cfg,
		Logger:     logger,
		Components: comps,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	// Add CORS Middleware (the browser UI runs on another origin)
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()

	go s.handleWebsockets()
	return s
}

// requestLogger sends gin's access log through the app logger at debug level.
func (s *FastAPIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	api := s.engine.Group("/api")

	// System
	api.GET("/health", s.getHealth)
	api.GET("/models", s.getModels)

	// Chat
	api.POST("/chat", s.postChat)
	api.GET("/history/:user_id", s.getHistory)
	api.DELETE("/history/:user_id", s.deleteHistory)

	// Market
	api.GET("/market/:ticker", s.getMarket)
	api.GET("/market/:ticker/history", s.getMarketHistory)
	api.GET("/market/:ticker/info", s.getMarketInfo)
	api.GET("/sectors", s.getSectors)

	// Tools
	api.GET("/tools", s.getTools)
	api.POST("/tools/call", s.postToolCall)

	// WebSocket endpoint
	s.engine.GET("/ws/chat", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *FastAPIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Stop(ctx context.Context) error {
	// Clean shutdown: stop the hub, then drain HTTP requests
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// System handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.Health())
}

// Health is shared with the gRPC surface.
func (s *FastAPIServer) Health() map[string]interface{} {
	health := map[string]interface{}{
		"status":      "healthy",
		"version":     Version,
		"agents":      AgentCount,
		"mcp_tools":   0,
		"connections": s.Connections(),
		"market_open": false,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.Tools != nil {
		health["mcp_tools"] = s.Tools.Count()
	}
	if s.Scheduler != nil {
		health["market_open"] = s.Scheduler.AnyMarketOpen()
	}
	if s.Errors != nil {
		health["collaborator_errors"] = s.Errors.Snapshot()
	}
	return health
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": llm.Providers,
		"models":    llm.SupportedModels,
	})
}
