package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/network"
)

// MModelOption is one selectable model of a provider.
type MModelOption struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
}

// SupportedModels lists the models offered per provider, default first.
var SupportedModels = map[string][]MModelOption{
	"openai": {
		{"gpt-4o", "GPT-4o"},
		{"gpt-4o-mini", "GPT-4o Mini"},
		{"gpt-4-turbo", "GPT-4 Turbo"},
		{"gpt-3.5-turbo", "GPT-3.5 Turbo"},
	},
	"anthropic": {
		{"claude-sonnet-4-20250514", "Claude Sonnet 4"},
		{"claude-3-5-sonnet-20241022", "Claude 3.5 Sonnet"},
		{"claude-3-haiku-20240307", "Claude 3 Haiku"},
	},
	"google": {
		{"gemini-2.0-flash", "Gemini 2.0 Flash"},
		{"gemini-1.5-pro", "Gemini 1.5 Pro"},
		{"gemini-1.5-flash", "Gemini 1.5 Flash"},
	},
}

// Providers in display order.
var Providers = []string{"openai", "anthropic", "google"}

// DefaultModel returns the first supported model of a provider.
func DefaultModel(provider string) string {
	if opts := SupportedModels[provider]; len(opts) > 0 {
		return opts[0].ID
	}
	return ""
}

// -----------------------------------------------------------------------------

// Factory builds a client for the provider named in each request. Clients are
// cheap and hold the request's key, so nothing is cached.
type Factory struct {
	Config  models.MLLMConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// NewFactory gives the HTTP providers their own network manager whose timeout
// is the generation timeout rather than the market-data one.
func NewFactory(cfg *models.MConfig, log *logger.Logger) *Factory {
	netCfg := *cfg
	if cfg.LLM.TimeoutSeconds > 0 {
		netCfg.Network.RequestTimeout = cfg.LLM.TimeoutSeconds
	}
	// proxies are meant for market data scraping only
	netCfg.Network.Enabled = false
	netCfg.Network.Proxies = nil

	return &Factory{
		Config:  cfg.LLM,
		Network: network.NewAsyncNetworkManager(&netCfg, log.Named("LLMNetwork")),
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// For returns a client for the request's provider. An unknown provider or a
// client that cannot be built is reported as unavailable.
func (f *Factory) For(pc models.MProviderConfig) (interfaces.ILanguageModel, error) {
	provider := strings.ToLower(strings.TrimSpace(pc.Provider))
	if provider == "" {
		provider = f.Config.Provider
	}
	model := pc.Model
	if model == "" {
		model = DefaultModel(provider)
	}
	s := settings{
		APIKey:      pc.APIKey,
		Model:       model,
		Temperature: f.Config.Temperature,
		MaxTokens:   f.Config.MaxTokens,
		Timeout:     time.Duration(f.Config.TimeoutSeconds) * time.Second,
	}

	switch provider {
	case "openai":
		return NewOpenAIClient(f.Network, f.Config.OpenAIBaseURL, s), nil
	case "anthropic":
		return NewAnthropicClient(f.Network, f.Config.AnthropicBaseURL, s), nil
	case "google":
		c, err := NewGoogleClient(context.Background(), s)
		if err != nil {
			return nil, helpers.Unavailable("language model", err)
		}
		return c, nil
	}
	return nil, helpers.Unavailable("language model",
		fmt.Errorf("unknown provider %q, available: %s", provider, strings.Join(Providers, ", ")))
}

// -----------------------------------------------------------------------------

type settings struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// withDefaultTimeout applies the generation timeout when the caller set none.
func withDefaultTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// -----------------------------------------------------------------------------

// NormalizeMessages folds system turns into the system prompt and maps every
// other role to user or assistant.
func NormalizeMessages(messages []models.MChatTurn, systemPrompt string) ([]models.MChatTurn, string) {
	out := make([]models.MChatTurn, 0, len(messages))
	system := systemPrompt
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case "assistant", "model", "ai":
			out = append(out, models.MChatTurn{Role: "assistant", Content: m.Content})
		default:
			out = append(out, models.MChatTurn{Role: "user", Content: m.Content})
		}
	}
	return out, system
}

// -----------------------------------------------------------------------------

// ResolveProvider fills request gaps from the configured provider. The
// configured key is only lent to its own provider.
func ResolveProvider(cfg models.MLLMConfig, provider, model, key string) models.MProviderConfig {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = cfg.Provider
	}
	if provider == "" {
		provider = "openai"
	}
	sameProvider := strings.EqualFold(provider, cfg.Provider)

	if model == "" {
		if sameProvider && cfg.Model != "" {
			model = cfg.Model
		} else {
			model = DefaultModel(provider)
		}
	}
	if key == "" && sameProvider {
		key = cfg.APIKey
	}
	return models.MProviderConfig{Provider: provider, Model: model, APIKey: key}
}
