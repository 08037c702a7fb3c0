package agents

import (
	"context"
	"fmt"

	"finnie/src/analysis"
	"finnie/src/helpers"
	"finnie/src/models"
	"finnie/src/utils"
)

const oracleParameterRequest = `**🔮 Investment Projection Calculator**

To calculate your projection, please provide:

1. **Initial Investment** — How much are you starting with?
2. **Monthly Contribution** — How much will you add each month?
3. **Time Horizon** — How many years until you need the money?

**Example:** "If I invest $10,000 initially and add $500 monthly for 10 years"

Or just tell me your scenario and I'll run the numbers!`

const oracleTemplate = `**🔮 Investment Projection**

**Inputs:**
- Initial Investment: $%s
- Monthly Contribution: $%s
- Time Horizon: %d years

---

**Projected Outcomes:**

| Scenario | Final Value | Total Growth |
|----------|-------------|--------------|
| 📉 Conservative (10th percentile) | $%s | %s%% |
| 📊 Expected (50th percentile) | $%s | %s%% |
| 📈 Optimistic (90th percentile) | $%s | %s%% |

**Total Contributions:** $%s

---

**Assumptions:**
- Average annual return: 8%% (historical S&P 500)
- Standard deviation: 18%% (typical market volatility)
- Monthly compounding
- Dividends reinvested

⚠️ *Past performance does not guarantee future results. Actual outcomes may vary significantly.*`

// -----------------------------------------------------------------------------

// The projection is computed locally, so there is no generation path. It
// runs under the same call timeout as the collaborators.
func oracleRespond(ctx context.Context, rc *models.MRequestContext, tk *Toolkit) (models.MResponderOutput, error) {
	params, ok := analysis.ParseProjectionParams(rc.UserInput())
	if !ok {
		return oracleFallback(rc), nil
	}

	ctx, cancel := context.WithTimeout(ctx, tk.callTimeout())
	defer cancel()

	sim, err := tk.facade().Project(ctx, params)
	if err != nil {
		return models.MResponderOutput{}, helpers.Unavailable("projection", err)
	}
	return Projection(params, sim), nil
}

func oracleFallback(rc *models.MRequestContext) models.MResponderOutput {
	out := fallbackOutput(models.RoleOracle, oracleParameterRequest, nil)
	out.Clarification = true
	return out
}

// -----------------------------------------------------------------------------

// Projection renders a simulation as the scenario table plus a chart payload.
func Projection(params models.MProjectionParams, sim models.MSimulationResult) models.MResponderOutput {
	text := fmt.Sprintf(oracleTemplate,
		utils.Money(params.Initial), utils.Money(params.Monthly), params.Years,
		utils.Money(sim.Conservative), utils.Fixed(sim.GrowthConservative, 1),
		utils.Money(sim.Expected), utils.Fixed(sim.GrowthExpected, 1),
		utils.Money(sim.Optimistic), utils.Fixed(sim.GrowthOptimistic, 1),
		utils.Money(sim.TotalContributions),
	)

	simulation := sim.AsMap()
	return models.MResponderOutput{
		Role: models.RoleOracle,
		Text: text,
		StructuredData: map[string]interface{}{
			"params":     params,
			"simulation": simulation,
		},
		Visualizations: []models.MVisualization{{
			Type:  "projection_chart",
			Title: "Investment Projection",
			Data:  simulation,
		}},
	}
}
