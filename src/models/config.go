package models

// MConfig Structure
type MConfig struct {
	Name         string              `yaml:"name"`
	Host         string              `yaml:"host"`
	Port         int                 `yaml:"port"`
	LogLevel     string              `yaml:"log_level"`
	GrpcHost     string              `yaml:"grpc_host"`
	GrpcPort     int                 `yaml:"grpc_port"`
	Storage      MStorageConfig      `yaml:"storage"`
	Network      MNetworkConfig      `yaml:"network"`
	LLM          MLLMConfig          `yaml:"llm"`
	MarketData   MMarketDataConfig   `yaml:"market_data"`
	Knowledge    MKnowledgeConfig    `yaml:"knowledge"`
	Orchestrator MOrchestratorConfig `yaml:"orchestrator"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

// MLLMConfig holds the default provider used when a request does not carry its own.
type MLLMConfig struct {
	Provider         string  `yaml:"provider"`
	Model            string  `yaml:"model"`
	APIKey           string  `yaml:"api_key,omitempty"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	OpenAIBaseURL    string  `yaml:"openai_base_url"`
	AnthropicBaseURL string  `yaml:"anthropic_base_url"`

	// set when the key came from the environment, so Save never persists it
	apiKeyFromEnv bool
}

func (c *MLLMConfig) SetAPIKeyFromEnv(key string) {
	c.APIKey = key
	c.apiKeyFromEnv = true
}

func (c MLLMConfig) APIKeyFromEnv() bool {
	return c.apiKeyFromEnv
}

type MMarketDataConfig struct {
	Enabled             bool     `yaml:"enabled"`
	BaseURL             string   `yaml:"base_url"`
	Watchlist           []string `yaml:"watchlist"`
	CacheSeconds        int      `yaml:"cache_seconds"`
	ClosedCacheSeconds  int      `yaml:"closed_cache_seconds"`
	ResolveCompanyNames bool     `yaml:"resolve_company_names"`
}

type MKnowledgeConfig struct {
	Enabled bool `yaml:"enabled"`
	Seed    bool `yaml:"seed"`
}

type MOrchestratorConfig struct {
	ParallelDispatch   bool `yaml:"parallel_dispatch"`
	CallTimeoutSeconds int  `yaml:"call_timeout_seconds"`
	NumSimulations     int  `yaml:"num_simulations"`
	HistoryLimit       int  `yaml:"history_limit"`
}
