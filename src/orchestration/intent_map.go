package orchestration

import "finnie/src/models"

var intentRoles = map[models.Intent][]models.Role{
	models.IntentMarketData: {models.RoleQuant},
	models.IntentEducation:  {models.RoleProfessor},
	models.IntentNews:       {models.RoleAnalyst},
	models.IntentPortfolio:  {models.RoleAdvisor, models.RoleQuant},
	models.IntentProjection: {models.RoleOracle, models.RoleQuant},
	models.IntentTrend:      {models.RoleScout, models.RoleAnalyst},
	models.IntentComparison: {models.RoleQuant, models.RoleAnalyst},
	models.IntentGeneral:    {models.RoleProfessor},
}

// -----------------------------------------------------------------------------

// RolesFor returns a fresh copy of the responder roles for an intent.
// Unknown intents get the education responder.
func RolesFor(intent models.Intent) []models.Role {
	roles, ok := intentRoles[intent]
	if !ok {
		roles = intentRoles[models.IntentEducation]
	}
	return append([]models.Role(nil), roles...)
}

// -----------------------------------------------------------------------------

// SelectRoles returns the full ordered role list for a turn: the responders,
// deduplicated, then compliance and synthesis as the last two.
func SelectRoles(intent models.Intent) []models.Role {
	out := make([]models.Role, 0, 4)
	seen := make(map[models.Role]bool)
	for _, r := range RolesFor(intent) {
		if r.IsStage() || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return append(out, models.RoleGuardian, models.RoleScribe)
}
