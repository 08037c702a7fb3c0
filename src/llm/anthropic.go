package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"finnie/src/interfaces"
	"finnie/src/models"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []models.MChatTurn `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnthropicClient talks to the messages endpoint.
type AnthropicClient struct {
	network interfaces.INetworkManager
	baseURL string
	s       settings
}

func NewAnthropicClient(nm interfaces.INetworkManager, baseURL string, s settings) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{network: nm, baseURL: strings.TrimRight(baseURL, "/"), s: s}
}

func (c *AnthropicClient) Provider() string { return "anthropic" }

// -----------------------------------------------------------------------------

func (c *AnthropicClient) Generate(ctx context.Context, messages []models.MChatTurn, systemPrompt string) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.s.Timeout)
	defer cancel()

	turns, system := NormalizeMessages(messages, systemPrompt)
	maxTokens := c.s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       c.s.Model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    turns,
		Temperature: c.s.Temperature,
	})
	if err != nil {
		return "", err
	}

	data, err := c.network.Post(ctx, c.baseURL+"/messages", map[string]string{
		"x-api-key":         c.s.APIKey,
		"anthropic-version": anthropicVersion,
	}, body)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("anthropic: %s", resp.Error.Message)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: no text returned")
	}
	return strings.TrimSpace(b.String()), nil
}
