package agents

import (
	"context"

	"finnie/src/models"
)

// Responder produces one role's output for a turn. A non-nil error means a
// collaborator was unavailable and the role's Fallback should be used.
type Responder func(ctx context.Context, rc *models.MRequestContext, tk *Toolkit) (models.MResponderOutput, error)

// Fallback is the deterministic answer for a role. It calls no collaborator.
type Fallback func(rc *models.MRequestContext) models.MResponderOutput

type Entry struct {
	Role        models.Role
	Description string
	Emoji       string
	Respond     Responder
	Fallback    Fallback
}

// -----------------------------------------------------------------------------

// Registry returns the role to responder table. Each call builds a new map so
// callers may swap entries in tests.
func Registry() map[models.Role]Entry {
	entries := []Entry{
		{models.RoleQuant, "Market data specialist providing real-time prices and technical analysis", "📊", quantRespond, quantFallback},
		{models.RoleProfessor, "Financial educator making complex concepts accessible", "📚", professorRespond, professorFallback},
		{models.RoleAnalyst, "Research specialist providing news and sentiment analysis", "🔍", analystRespond, analystFallback},
		{models.RoleAdvisor, "Portfolio specialist providing allocation analysis and guidance", "💼", advisorRespond, advisorFallback},
		{models.RoleOracle, "Projection specialist using Monte Carlo simulations", "🔮", oracleRespond, oracleFallback},
		{models.RoleScout, "Trend discovery specialist tracking market movers", "🌍", scoutRespond, scoutFallback},
	}

	table := make(map[models.Role]Entry, len(entries))
	for _, e := range entries {
		table[e.Role] = e
	}
	return table
}

// -----------------------------------------------------------------------------

func fallbackOutput(role models.Role, text string, data map[string]interface{}) models.MResponderOutput {
	return models.MResponderOutput{Role: role, Text: text, StructuredData: data, Fallback: true}
}
