package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finnie/src/models"

	"google.golang.org/genai"
)

// GoogleClient calls Gemini through the genai SDK.
type GoogleClient struct {
	client *genai.Client
	s      settings
}

func NewGoogleClient(ctx context.Context, s settings) (*GoogleClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GoogleClient{client: client, s: s}, nil
}

func (c *GoogleClient) Provider() string { return "google" }

// -----------------------------------------------------------------------------

func (c *GoogleClient) Generate(ctx context.Context, messages []models.MChatTurn, systemPrompt string) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.s.Timeout)
	defer cancel()

	contents, config := c.request(messages, systemPrompt)
	resp, err := c.client.Models.GenerateContent(ctx, c.s.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("google: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("google: no text returned")
	}
	return text, nil
}

// request maps chat turns onto genai contents; assistant turns become the
// model role.
func (c *GoogleClient) request(messages []models.MChatTurn, systemPrompt string) ([]*genai.Content, *genai.GenerateContentConfig) {
	turns, system := NormalizeMessages(messages, systemPrompt)

	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}

	temperature := float32(c.s.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(c.s.MaxTokens),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return contents, config
}
