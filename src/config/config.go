package config

import (
	"fmt"
	"os"

	"finnie/src/helpers"
	"finnie/src/models"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides llm.api_key when set.
const APIKeyEnv = "FINNIE_LLM_API_KEY"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from YAML bytes, applying defaults and the env override.
func Parse(data []byte) (*Config, error) {
	// 1. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 2. Fill what the file left out
	config.ApplyDefaults()
	if key := os.Getenv(APIKeyEnv); key != "" {
		config.LLM.SetAPIKeyFromEnv(key)
	}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError(err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a runnable configuration with no file at all.
func Default() *Config {
	c := &Config{MConfig: &models.MConfig{}}
	c.ApplyDefaults()
	return c
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills zero values with the shipped defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "finnie"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = c.Host
	}

	// Storage
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "finnie.db"
	}

	// Network
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Network.MaxRetries == 0 {
		c.Network.MaxRetries = 2
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = 4
	}

	// LLM
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}

	// Market data
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.CacheSeconds == 0 {
		c.MarketData.CacheSeconds = 60
	}
	if c.MarketData.ClosedCacheSeconds == 0 {
		c.MarketData.ClosedCacheSeconds = 900
	}

	// Orchestrator
	if c.Orchestrator.CallTimeoutSeconds == 0 {
		c.Orchestrator.CallTimeoutSeconds = 20
	}
	if c.Orchestrator.NumSimulations == 0 {
		c.Orchestrator.NumSimulations = 1000
	}
	if c.Orchestrator.HistoryLimit == 0 {
		c.Orchestrator.HistoryLimit = 2000
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}
	if c.GrpcPort != 0 && c.GrpcPort == c.Port && c.GrpcHost == c.Host {
		return fmt.Errorf("grpc port %d collides with the http port", c.GrpcPort)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate LLM configuration
	switch c.LLM.Provider {
	case "openai", "anthropic", "google":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}

	// Validate Orchestrator configuration
	if c.Orchestrator.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("call timeout must be greater than 0")
	}
	if c.Orchestrator.NumSimulations < 2 {
		return fmt.Errorf("num simulations must be at least 2")
	}

	for i, t := range c.MarketData.Watchlist {
		if t == "" {
			return fmt.Errorf("watchlist entry %d cannot be empty", i)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	out := *c.MConfig
	if c.LLM.APIKeyFromEnv() {
		out.LLM.APIKey = ""
	}

	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0600: it may hold a credential)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
