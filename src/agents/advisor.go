package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"finnie/src/models"
	"finnie/src/utils"
)

const advisorPrompt = `You are The Advisor, Finnie AI's portfolio management specialist.

Your role:
- Analyze portfolio composition and allocation
- Calculate key risk metrics
- Suggest rebalancing strategies
- Provide diversification insights

Communication style:
- Professional but accessible
- Use data to support observations
- Present balanced perspectives
- Always emphasize risk awareness

When analyzing portfolios:
1. Summarize current allocation by asset class/sector
2. Identify concentration risks
3. Compare to common benchmarks
4. Suggest improvements (not specific trades)

Remember: You educate about portfolio concepts, you don't give specific investment advice.
Always remind users to consult a licensed financial advisor for personalized guidance.`

const (
	advisorEmpty = "Your portfolio appears to be empty. Would you like to add some holdings?"

	advisorNoPortfolio = `**Portfolio Analysis**

I don't have your portfolio data yet. To get personalized analysis:

1. **Add Holdings** in the Portfolio tab
2. Enter your stock positions and quantities
3. I'll analyze your allocation and provide insights

**In the meantime, here are some general portfolio concepts:**

📊 **Diversification** — Spread investments across asset classes
⚖️ **Rebalancing** — Periodically adjust to maintain target allocation
🎯 **Risk Tolerance** — Match investments to your comfort level

*Would you like me to explain any of these concepts in detail?*`

	// ConcentrationLimit is the share of the top holding that raises an alert.
	ConcentrationLimit = 40.0
)

type allocation struct {
	Ticker  string  `json:"ticker"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// -----------------------------------------------------------------------------

func advisorRespond(ctx context.Context, rc *models.MRequestContext, tk *Toolkit) (models.MResponderOutput, error) {
	if p := rc.Portfolio(); p != nil {
		return AnalyzePortfolio(p), nil
	}
	if !rc.Provider().HasCredential() {
		return advisorFallback(rc), nil
	}

	text, err := tk.generate(ctx, rc, advisorPrompt, "")
	if err != nil {
		return models.MResponderOutput{}, err
	}
	return models.MResponderOutput{Role: models.RoleAdvisor, Text: text}, nil
}

func advisorFallback(rc *models.MRequestContext) models.MResponderOutput {
	if p := rc.Portfolio(); p != nil {
		out := AnalyzePortfolio(p)
		out.Fallback = true
		return out
	}
	return fallbackOutput(models.RoleAdvisor, advisorNoPortfolio, nil)
}

// -----------------------------------------------------------------------------

// AnalyzePortfolio computes each holding's share of the total, sorted largest
// first, with a text bar per holding and a concentration alert.
func AnalyzePortfolio(p *models.MPortfolio) models.MResponderOutput {
	if len(p.Holdings) == 0 {
		return models.MResponderOutput{Role: models.RoleAdvisor, Text: advisorEmpty}
	}

	// 1. Totals and shares
	total := 0.0
	for _, h := range p.Holdings {
		total += h.Value
	}
	allocs := make([]allocation, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		pct := 0.0
		if total != 0 {
			pct = h.Value / total * 100
		}
		ticker := h.Ticker
		if ticker == "" {
			ticker = "Unknown"
		}
		allocs = append(allocs, allocation{Ticker: ticker, Value: h.Value, Percent: utils.Round(pct, 1)})
	}
	sort.SliceStable(allocs, func(i, j int) bool { return allocs[i].Percent > allocs[j].Percent })

	// 2. Render
	var b strings.Builder
	fmt.Fprintf(&b, "**Portfolio Analysis**\n\n**Total Value:** $%s\n\n**Allocation:**\n", utils.Money(total))
	labels := make([]string, len(allocs))
	values := make([]float64, len(allocs))
	for i, a := range allocs {
		bar := strings.Repeat("█", int(a.Percent/5))
		fmt.Fprintf(&b, "- **%s**: %s%% ($%s) %s\n", a.Ticker, utils.ShortFloat(a.Percent), utils.Money(a.Value), bar)
		labels[i], values[i] = a.Ticker, a.Percent
	}
	if allocs[0].Percent > ConcentrationLimit {
		fmt.Fprintf(&b, "\n⚠️ **Concentration Alert:** %s represents over 40%% of your portfolio.\n", allocs[0].Ticker)
	}
	b.WriteString("\n*For personalized advice, please consult a licensed financial advisor.*")

	return models.MResponderOutput{
		Role: models.RoleAdvisor,
		Text: b.String(),
		StructuredData: map[string]interface{}{
			"total_value": total,
			"allocations": allocs,
		},
		Visualizations: []models.MVisualization{{
			Type:  "allocation_chart",
			Title: "Portfolio Allocation",
			Data:  map[string]interface{}{"labels": labels, "values": values},
		}},
	}
}
