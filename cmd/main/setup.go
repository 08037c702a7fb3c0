package main

import (
	"context"
	"fmt"

	"finnie/src/agents"
	"finnie/src/analysis"
	"finnie/src/config"
	"finnie/src/interfaces"
	"finnie/src/knowledge"
	"finnie/src/llm"
	"finnie/src/logger"
	"finnie/src/marketdata"
	"finnie/src/marketdata/yahoo"
	"finnie/src/mcp"
	"finnie/src/network"
	"finnie/src/orchestration"
	"finnie/src/storage"
	"finnie/src/utils"
)

// components is everything a command may need, built once from the config.
type components struct {
	Config    *config.Config
	Logger    *logger.Logger
	Scheduler *utils.MarketScheduler
	Market    *marketdata.MarketDataManager
	Knowledge *knowledge.SQLKnowledgeBase
	Store     interfaces.IChatStore
	Analysis  *analysis.AnalysisFacade
	Orch      *orchestration.Orchestrator
	Tools     *mcp.ToolRegistry
}

// -----------------------------------------------------------------------------

// loadConfig reads --config, falling back to the built-in defaults when the
// default path does not exist.
func loadConfig() (*config.Config, error) {
	conf, err := config.NewConfig(configPath)
	if err != nil {
		if !rootCmd.PersistentFlags().Changed("config") {
			conf = config.Default()
		} else {
			return nil, err
		}
	}
	if verbose {
		conf.LogLevel = "DEBUG"
	}
	return conf, nil
}

// -----------------------------------------------------------------------------

// setupComponents wires the pipeline. withStore opens chat history; the one
// shot commands skip it.
func setupComponents(ctx context.Context, conf *config.Config, withStore bool) (*components, error) {
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	c := &components{Config: conf, Logger: appLogger}

	// 1. Market data
	c.Scheduler = utils.NewMarketScheduler(watchlist(conf), appLogger.Named("Scheduler"))
	if conf.MarketData.Enabled {
		c.Market = setupMarketData(conf, c.Scheduler, appLogger)
	}

	// 2. Knowledge base (a failure only costs generation context)
	if conf.Knowledge.Enabled {
		kb := knowledge.NewSQLKnowledgeBase(conf.MConfig, appLogger.Named("Knowledge"))
		if err := kb.Initialize(ctx); err != nil {
			appLogger.Warning("Knowledge base unavailable: %v", err)
		} else {
			c.Knowledge = kb
		}
	}

	// 3. Chat history
	if withStore {
		store, err := setupStore(ctx, conf, appLogger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Store = store
	}

	// 4. Pipeline
	c.Analysis = analysis.NewAnalysisFacade(conf.MConfig, appLogger.Named("Analysis"))
	tk := &agents.Toolkit{
		Config:    conf.MConfig,
		Logger:    appLogger.Named("Agents"),
		LLM:       llm.NewFactory(conf.MConfig, appLogger.Named("LLM")),
		Analysis:  c.Analysis,
		Scheduler: c.Scheduler,
	}
	// nil pointers must not leak into the interfaces as typed nils
	var market interfaces.IMarketData
	if c.Market != nil {
		tk.Market = c.Market
		market = c.Market
	}
	if c.Knowledge != nil {
		tk.Knowledge = c.Knowledge
	}
	c.Orch = orchestration.NewOrchestrator(conf.MConfig, tk, appLogger.Named("Orchestrator"))

	// 5. Tools
	c.Tools = mcp.NewDefaultRegistry(market, c.Analysis, appLogger.Named("Tools"))

	return c, nil
}

// -----------------------------------------------------------------------------

// setupMarketData builds the Yahoo source behind the cached manager
func setupMarketData(conf *config.Config, scheduler *utils.MarketScheduler, appLogger *logger.Logger) *marketdata.MarketDataManager {
	netManager := network.NewAsyncNetworkManager(conf.MConfig, appLogger.Named("NetworkManager"))
	source := yahoo.NewYahooFinanceSource(conf.MConfig, netManager, appLogger.Named("Yahoo"))
	appLogger.Info("Market data from %s (cache %ds open, %ds closed)",
		conf.MarketData.BaseURL, conf.MarketData.CacheSeconds, conf.MarketData.ClosedCacheSeconds)
	return marketdata.NewMarketDataManager(conf.MConfig, []interfaces.IMarketData{source}, scheduler, appLogger.Named("MarketData"))
}

// -----------------------------------------------------------------------------

// setupStore opens the chat store named by storage.db_type
func setupStore(ctx context.Context, conf *config.Config, appLogger *logger.Logger) (interfaces.IChatStore, error) {
	store, err := storage.NewChatStore(conf.MConfig, appLogger)
	if err != nil {
		return nil, fmt.Errorf("init chat store: %w", err)
	}
	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate chat store: %w", err)
	}
	appLogger.Info("Chat history in %s store", conf.Storage.DBType)
	return store, nil
}

// -----------------------------------------------------------------------------

func watchlist(conf *config.Config) []string {
	if len(conf.MarketData.Watchlist) > 0 {
		return conf.MarketData.Watchlist
	}
	return utils.DefaultWatchlist
}

// Close releases the databases.
func (c *components) Close() {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger.Warning("Close chat store: %v", err)
		}
	}
	if c.Knowledge != nil {
		if err := c.Knowledge.Close(); err != nil {
			c.Logger.Warning("Close knowledge base: %v", err)
		}
	}
	c.Logger.Sync()
}
