package interfaces

import (
	"context"

	"finnie/src/models"
)

// -----------------------------------------------------------------------------
// ILanguageModel is the language-generation collaborator.
// -----------------------------------------------------------------------------

type ILanguageModel interface {

	// Provider returns the provider name (openai, anthropic, google).
	Provider() string

	// -----------------------------------------------------------------------------

	// Generate sends the ordered messages with an optional system prompt and
	// returns the generated text. Failures are reported, never swallowed.
	Generate(ctx context.Context, messages []models.MChatTurn, systemPrompt string) (string, error)
}

// -----------------------------------------------------------------------------
// ILanguageModelFactory builds a client for the provider selected in a request.
// -----------------------------------------------------------------------------

type ILanguageModelFactory interface {
	For(cfg models.MProviderConfig) (ILanguageModel, error)
}
