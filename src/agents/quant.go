package agents

import (
	"context"
	"fmt"
	"strings"

	"finnie/src/models"
	"finnie/src/utils"
)

const (
	quantNoTickers = "I couldn't identify any stock tickers in your request. Please include ticker symbols like AAPL, MSFT, or GOOGL."
)

func quantNotFound(tickers []string) string {
	return fmt.Sprintf("I couldn't find data for the ticker(s): %s. Please verify the symbol(s).", strings.Join(tickers, ", "))
}

// -----------------------------------------------------------------------------

func quantRespond(ctx context.Context, rc *models.MRequestContext, tk *Toolkit) (models.MResponderOutput, error) {
	tickers := tickersFor(rc)
	if len(tickers) == 0 {
		return quantFallback(rc), nil
	}

	capped := tickers
	if len(capped) > utils.MaxQuoteTickers {
		capped = capped[:utils.MaxQuoteTickers]
	}

	// 1. Fetch quotes; a failed ticker is skipped
	quotes := make([]*models.MQuote, len(capped))
	_ = tk.each(ctx, len(capped), func(ctx context.Context, i int) error {
		q, err := tk.quote(ctx, capped[i])
		if err != nil {
			tk.Logger.Debug("Quote for %s failed: %v", capped[i], err)
			return nil
		}
		quotes[i] = q
		return nil
	})

	found := make([]*models.MQuote, 0, len(quotes))
	data := make(map[string]interface{}, len(quotes))
	for _, q := range quotes {
		if q != nil {
			found = append(found, q)
			data[q.Ticker] = q
		}
	}

	// 2. Nothing came back: ask the user to check the symbols
	if len(found) == 0 {
		return models.MResponderOutput{
			Role:          models.RoleQuant,
			Text:          quantNotFound(tickers),
			Clarification: true,
		}, nil
	}

	// 3. Card or table
	text := FormatQuoteTable(found)
	if len(found) == 1 {
		text = FormatQuoteCard(found[0])
	}
	return models.MResponderOutput{
		Role:           models.RoleQuant,
		Text:           text,
		StructuredData: map[string]interface{}{"quotes": data},
	}, nil
}

// -----------------------------------------------------------------------------

func quantFallback(rc *models.MRequestContext) models.MResponderOutput {
	tickers := tickersFor(rc)
	out := fallbackOutput(models.RoleQuant, quantNoTickers, nil)
	if len(tickers) > 0 {
		out.Text = quantNotFound(tickers)
	}
	out.Clarification = true
	return out
}

// -----------------------------------------------------------------------------

// FormatQuoteCard renders the detail view for one ticker.
func FormatQuoteCard(q *models.MQuote) string {
	emoji, sign := "📈", "+"
	if q.Change < 0 {
		emoji, sign = "📉", ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n\n", q.Name, q.Ticker)
	fmt.Fprintf(&b, "**Current Price:** $%s %s %s$%s (%s%s%%)\n\n",
		utils.Money(q.Price), emoji, sign, utils.Fixed(q.Change, 2), sign, utils.Fixed(q.ChangePercent, 2))
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Open | $%s |\n", utils.Money(q.Open))
	fmt.Fprintf(&b, "| Day Range | $%s - $%s |\n", utils.Money(q.DayLow), utils.Money(q.DayHigh))
	fmt.Fprintf(&b, "| 52-Week Range | $%s - $%s |\n", utils.Money(q.FiftyTwoWeekLow), utils.Money(q.FiftyTwoWeekHigh))
	fmt.Fprintf(&b, "| Volume | %s |\n", utils.Int(q.Volume))
	fmt.Fprintf(&b, "| Market Cap | $%s |", utils.Int(q.MarketCap))

	if present(q.PERatio) {
		fmt.Fprintf(&b, "\n| P/E Ratio | %s |", utils.Fixed(*q.PERatio, 2))
	}
	if present(q.EPS) {
		fmt.Fprintf(&b, "\n| EPS | $%s |", utils.Fixed(*q.EPS, 2))
	}
	if present(q.DividendYield) {
		fmt.Fprintf(&b, "\n| Dividend Yield | %s%% |", utils.Fixed(*q.DividendYield*100, 2))
	}
	if q.Sector != "" {
		fmt.Fprintf(&b, "\n\n**Sector:** %s", q.Sector)
		if q.Industry != "" {
			fmt.Fprintf(&b, " | **Industry:** %s", q.Industry)
		}
	}
	return b.String()
}

// -----------------------------------------------------------------------------

// FormatQuoteTable renders a side by side comparison.
func FormatQuoteTable(quotes []*models.MQuote) string {
	header, sep := "| Metric |", "|--------|"
	price, capRow, pe, rng := "| Price |", "| Market Cap |", "| P/E Ratio |", "| 52W Range |"

	for _, q := range quotes {
		header += " " + q.Ticker + " |"
		sep += "--------|"

		sign := ""
		if q.ChangePercent >= 0 {
			sign = "+"
		}
		price += fmt.Sprintf(" $%s (%s%s%%) |", utils.Money(q.Price), sign, utils.Fixed(q.ChangePercent, 1))
		capRow += " " + utils.AbbreviateCap(float64(q.MarketCap)) + " |"
		if present(q.PERatio) {
			pe += " " + utils.Fixed(*q.PERatio, 2) + " |"
		} else {
			pe += " N/A |"
		}
		rng += fmt.Sprintf(" $%s-$%s |", utils.Fixed(q.FiftyTwoWeekLow, 0), utils.Fixed(q.FiftyTwoWeekHigh, 0))
	}

	return strings.Join([]string{header, sep, price, capRow, pe, rng}, "\n")
}

func present(v *float64) bool {
	return v != nil && *v != 0
}
