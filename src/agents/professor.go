package agents

import (
	"context"
	"strings"

	"finnie/src/models"
)

const professorPrompt = `You are The Professor, Finnie AI's financial educator.

Your role:
- Explain financial concepts in clear, simple language
- Use analogies and real-world examples
- Adapt explanations to the user's apparent knowledge level
- Include key takeaways and practical applications

Communication style:
- Warm and encouraging, like a patient teacher
- Break down complex topics into digestible parts
- Use markdown headers for organization
- Include "Key Takeaway" summaries

When explaining concepts:
1. Start with a simple definition
2. Provide an analogy or example
3. Explain why it matters to investors
4. Give practical applications
5. Suggest related topics to explore

Remember: Education is your goal, not investment advice.
Keep explanations concise but thorough - aim for 2-3 paragraphs max.`

var topicPrefixes = []string{
	"what is a ", "what is an ", "what is ", "what are ",
	"explain ", "how does ", "how do ", "tell me about ",
	"can you explain ",
}

type definition struct {
	Key  string
	Text string
}

// Checked in order; the first key contained in the topic wins.
var offlineDefinitions = []definition{
	{"p/e ratio", `**P/E Ratio (Price-to-Earnings Ratio)**

The P/E ratio measures how much investors are willing to pay for each dollar of a company's earnings.

**Formula:** P/E = Stock Price ÷ Earnings Per Share

**Example:** If a stock costs $100 and the company earns $5 per share, the P/E is 20. This means investors pay $20 for every $1 of earnings.

**Key Takeaway:** A high P/E might mean investors expect future growth, while a low P/E might indicate undervaluation or concerns about the company.`},
	{"market cap", `**Market Capitalization (Market Cap)**

Market cap represents the total value of a company's outstanding shares.

**Formula:** Market Cap = Current Stock Price × Total Shares Outstanding

**Categories:**
- **Large Cap:** >$10 billion (e.g., Apple, Microsoft)
- **Mid Cap:** $2-10 billion
- **Small Cap:** <$2 billion

**Key Takeaway:** Market cap helps compare company sizes and is often used to assess risk—larger companies are generally considered more stable.`},
	{"dividend", `**Dividends**

A dividend is a portion of company profits paid to shareholders, typically quarterly.

**Key Terms:**
- **Dividend Yield:** Annual dividend ÷ Stock price (expressed as %)
- **Payout Ratio:** Dividends ÷ Net income (how much profit is distributed)

**Example:** A $100 stock paying $4 annually has a 4% yield.

**Key Takeaway:** Dividends provide income from investments, but not all companies pay them—growth companies often reinvest profits instead.`},
	{"etf", `**ETF (Exchange-Traded Fund)**

An ETF is a basket of securities (stocks, bonds, commodities) that trades on an exchange like a stock.

**How it works:**
1. Fund company buys a collection of assets
2. Creates shares representing ownership
3. Shares trade on exchanges throughout the day

**Benefits:**
- 📊 Diversification in one purchase
- 💰 Lower fees than mutual funds
- 🔄 Trading flexibility

**Key Takeaway:** ETFs offer an easy way to invest in entire markets, sectors, or strategies with a single purchase.`},
}

const professorNeedsKey = `I'd be happy to help with **"%TOPIC%"**, but I need an LLM API key to generate detailed answers.

**To enable full responses:**
1. Go to the **⚙️ Settings** tab
2. Select your LLM provider (OpenAI, Anthropic, or Google)
3. Enter your API key and click **Save**

Once connected, I can explain any financial concept in depth!

*In the meantime, try asking about topics I know offline: **P/E ratio**, **market cap**, **dividends**, or **ETFs**.*`

// -----------------------------------------------------------------------------

// ExtractTopic lowercases a question, strips the first matching question
// prefix and trailing punctuation.
func ExtractTopic(text string) string {
	text = strings.ToLower(text)
	for _, p := range topicPrefixes {
		if strings.HasPrefix(text, p) {
			text = text[len(p):]
			break
		}
	}
	return strings.TrimSpace(strings.TrimRight(text, "?!."))
}

// -----------------------------------------------------------------------------

func professorRespond(ctx context.Context, rc *models.MRequestContext, tk *Toolkit) (models.MResponderOutput, error) {
	if !rc.Provider().HasCredential() {
		return professorFallback(rc), nil
	}

	topic := ExtractTopic(rc.UserInput())
	text, err := tk.generate(ctx, rc, professorPrompt, tk.conceptContext(ctx, topic))
	if err != nil {
		return models.MResponderOutput{}, err
	}
	return models.MResponderOutput{
		Role:           models.RoleProfessor,
		Text:           text,
		StructuredData: map[string]interface{}{"topic": topic},
	}, nil
}

// -----------------------------------------------------------------------------

func professorFallback(rc *models.MRequestContext) models.MResponderOutput {
	topic := ExtractTopic(rc.UserInput())
	data := map[string]interface{}{"topic": topic}
	for _, d := range offlineDefinitions {
		if strings.Contains(topic, d.Key) {
			return fallbackOutput(models.RoleProfessor, d.Text, data)
		}
	}
	return fallbackOutput(models.RoleProfessor, strings.Replace(professorNeedsKey, "%TOPIC%", topic, 1), data)
}
