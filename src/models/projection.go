package models

// MProjectionParams are the inputs parsed from a projection request.
type MProjectionParams struct {
	Initial    float64 `json:"initial"`
	Monthly    float64 `json:"monthly"`
	Years      int     `json:"years"`
	ReturnRate float64 `json:"return_rate"`
}

// MSimulationResult is the percentile summary of a Monte Carlo run.
type MSimulationResult struct {
	Conservative       float64 `json:"conservative"`
	Expected           float64 `json:"expected"`
	Optimistic         float64 `json:"optimistic"`
	TotalContributions float64 `json:"total_contributions"`
	GrowthConservative float64 `json:"growth_conservative"`
	GrowthExpected     float64 `json:"growth_expected"`
	GrowthOptimistic   float64 `json:"growth_optimistic"`
}

// AsMap flattens the result for structured data and visualization payloads.
func (r MSimulationResult) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"conservative":        r.Conservative,
		"expected":            r.Expected,
		"optimistic":          r.Optimistic,
		"total_contributions": r.TotalContributions,
		"growth_conservative": r.GrowthConservative,
		"growth_expected":     r.GrowthExpected,
		"growth_optimistic":   r.GrowthOptimistic,
	}
}
