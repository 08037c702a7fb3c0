package interfaces

import (
	"context"

	"finnie/src/models"
)

// -----------------------------------------------------------------------------
// ITurnRunner is the single entry point hosts use to answer one user turn.
// -----------------------------------------------------------------------------

type ITurnRunner interface {
	RunTurn(ctx context.Context, req models.MTurnRequest) (*models.MTurnResult, error)
}
