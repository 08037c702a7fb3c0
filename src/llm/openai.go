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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openAIRequest struct {
	Model       string             `json:"model"`
	Messages    []models.MChatTurn `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIClient talks to the chat completions endpoint.
type OpenAIClient struct {
	network interfaces.INetworkManager
	baseURL string
	s       settings
}

func NewOpenAIClient(nm interfaces.INetworkManager, baseURL string, s settings) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{network: nm, baseURL: strings.TrimRight(baseURL, "/"), s: s}
}

func (c *OpenAIClient) Provider() string { return "openai" }

// -----------------------------------------------------------------------------

func (c *OpenAIClient) Generate(ctx context.Context, messages []models.MChatTurn, systemPrompt string) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.s.Timeout)
	defer cancel()

	turns, system := NormalizeMessages(messages, systemPrompt)
	if system != "" {
		turns = append([]models.MChatTurn{{Role: "system", Content: system}}, turns...)
	}

	body, err := json.Marshal(openAIRequest{
		Model:       c.s.Model,
		Messages:    turns,
		Temperature: c.s.Temperature,
		MaxTokens:   c.s.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	data, err := c.network.Post(ctx, c.baseURL+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + c.s.APIKey,
	}, body)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	var resp openAIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
