package agents

import (
	"context"
	"strings"

	"finnie/src/models"
	"finnie/src/utils"
)

const analystPrompt = `You are The Analyst, Finnie AI's research and sentiment specialist.

Your role:
- Provide relevant market news and developments
- Analyze sentiment around stocks and sectors
- Summarize research findings concisely
- Identify key factors affecting market movements

Communication style:
- Objective and fact-based
- Present multiple perspectives
- Use bullet points for news items
- Include source attribution when possible

When providing analysis:
1. Lead with the most important news
2. Provide context on why it matters
3. Include sentiment indicators (bullish/bearish/neutral)
4. Mention potential implications

Remember: You analyze and inform, you don't predict or advise.`

const analystTickerPlaceholder = `**Market Analysis for %TICKERS%**

I'm currently unable to fetch live news data. Here's what I can tell you:

**General Market Context:**
- 📊 Markets are operating during normal hours
- 🔄 For live news, check financial news sources directly

**Suggested Sources:**
- Yahoo Finance: finance.yahoo.com
- MarketWatch: marketwatch.com
- Reuters: reuters.com/business

*Live news integration coming soon!*`

const analystPlaceholder = `**Market Analysis**

I'd be happy to analyze market news and sentiment! Please specify:
- A stock ticker (e.g., AAPL, TSLA)
- A sector (e.g., "tech news", "energy sector")
- A topic (e.g., "Fed interest rates", "earnings season")

*Live news integration coming soon!*`

// -----------------------------------------------------------------------------

// analystTickers reads symbols from the message itself. Company names the host
// resolved are not news subjects until the user types the symbol.
func analystTickers(rc *models.MRequestContext) []string {
	return utils.ExtractTickers(rc.UserInput())
}

func analystRespond(ctx context.Context, rc *models.MRequestContext, tk *Toolkit) (models.MResponderOutput, error) {
	if !rc.Provider().HasCredential() {
		return analystFallback(rc), nil
	}

	tickers := analystTickers(rc)
	text, err := tk.generate(ctx, rc, analystPrompt, tk.companyContext(ctx, tickers))
	if err != nil {
		return models.MResponderOutput{}, err
	}
	return models.MResponderOutput{
		Role:           models.RoleAnalyst,
		Text:           text,
		StructuredData: map[string]interface{}{"tickers": tickers, "analyzed": true},
	}, nil
}

// -----------------------------------------------------------------------------

func analystFallback(rc *models.MRequestContext) models.MResponderOutput {
	tickers := analystTickers(rc)
	data := map[string]interface{}{"tickers": tickers}
	if len(tickers) == 0 {
		out := fallbackOutput(models.RoleAnalyst, analystPlaceholder, data)
		out.Clarification = true
		return out
	}
	text := strings.Replace(analystTickerPlaceholder, "%TICKERS%", strings.Join(tickers, ", "), 1)
	return fallbackOutput(models.RoleAnalyst, text, data)
}
