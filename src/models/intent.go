package models

// Intent is the classified purpose of one user message.
type Intent string

const (
	IntentMarketData Intent = "market_data"
	IntentEducation  Intent = "education"
	IntentNews       Intent = "news"
	IntentPortfolio  Intent = "portfolio"
	IntentProjection Intent = "projection"
	IntentTrend      Intent = "trend"
	IntentComparison Intent = "comparison"
	IntentGeneral    Intent = "general"
)

// AllIntents lists the closed intent set in classifier priority order, General last.
var AllIntents = []Intent{
	IntentMarketData,
	IntentEducation,
	IntentNews,
	IntentPortfolio,
	IntentProjection,
	IntentTrend,
	IntentComparison,
	IntentGeneral,
}

// -----------------------------------------------------------------------------

// Role tags a responder, or one of the two stages that run on every turn.
type Role string

const (
	RoleQuant     Role = "quant"
	RoleProfessor Role = "professor"
	RoleAnalyst   Role = "analyst"
	RoleAdvisor   Role = "advisor"
	RoleOracle    Role = "oracle"
	RoleScout     Role = "scout"

	RoleGuardian Role = "guardian"
	RoleScribe   Role = "scribe"
)

// IsStage reports whether the role is the compliance or synthesis stage.
func (r Role) IsStage() bool {
	return r == RoleGuardian || r == RoleScribe
}
