package interfaces

import (
	"context"

	"finnie/src/models"
)

// -----------------------------------------------------------------------------
// IChatStore defines the contract for chat-history persistence.
// -----------------------------------------------------------------------------

type IChatStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	UpsertUser(ctx context.Context, user models.MUser) (*models.MUser, error)
	CreateConversation(ctx context.Context, userID, title string) (string, error)
	// GetConversation returns helpers.ErrNotFound for an unknown id.
	GetConversation(ctx context.Context, convID string) (*models.MConversation, error)
	ListConversations(ctx context.Context, userID string, limit int) ([]models.MConversation, error)
	UpdateConversationTitle(ctx context.Context, convID, title string) error
	UpdateConversationSummary(ctx context.Context, convID, summary string) error
	DeleteConversation(ctx context.Context, convID string) error

	// -----------------------------------------------------------------------------

	SaveMessage(ctx context.Context, convID, role, content, agent string) (string, error)
	GetMessages(ctx context.Context, convID string, limit int) ([]models.MChatMessage, error)

	// -----------------------------------------------------------------------------

	// ConversationSummary renders recent history for inclusion in prompts.
	ConversationSummary(ctx context.Context, userID string) (string, error)

	// AutoTitle names a conversation after its first user message.
	AutoTitle(ctx context.Context, convID, firstMessage string) error

	// ClearUserHistory deletes all conversations and messages for a user.
	ClearUserHistory(ctx context.Context, userID string) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
