package agents

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"finnie/src/helpers"
	"finnie/src/models"
	"finnie/src/utils"
)

const scoutFallbackText = `**🌍 Market Trends**

I'm having trouble fetching live market data right now.

**What I can track:**
- Top gainers and losers
- Sector movements
- Popular stock activity
- Index performance (SPY, QQQ, DIA)

**Try asking about:**
- "What's moving in tech today?"
- "How did the market move last week?"
- "Show me today's biggest gainers"

*Real-time data integration in progress!*`

const momentumNote = "\n\n💡 *I can't predict the future, but stocks with strong recent momentum often continue their trend. Watch for earnings reports and macro events that could shift direction.*"

var errNoMovers = errors.New("no watchlist data")

type periodRule struct {
	Phrases []string
	Period  string
	Label   string
}

// Forward-looking phrases are checked first and win over explicit ranges.
var periodRules = []periodRule{
	{[]string{"tomorrow", "next week", "next month", "on monday", "on tuesday", "on wednesday",
		"on thursday", "on friday", "will move", "predict", "forecast", "outlook", "going to"},
		"5d", "Recent Momentum (past 5 days)"},
	{[]string{"last week", "past week", "1 week", "this week", "5 day", "5 days"}, "5d", "Past Week"},
	{[]string{"last month", "past month", "1 month", "this month", "30 day"}, "1mo", "Past Month"},
	{[]string{"last 3 month", "3 months", "quarter", "past quarter"}, "3mo", "Past 3 Months"},
	{[]string{"last 6 month", "6 months", "half year"}, "6mo", "Past 6 Months"},
	{[]string{"last year", "past year", "1 year", "12 month", "this year", "ytd"}, "1y", "Past Year"},
}

// -----------------------------------------------------------------------------

// DetectPeriod maps free text to a history period and its display label.
func DetectPeriod(text string) (string, string) {
	text = strings.ToLower(text)
	for _, rule := range periodRules {
		for _, p := range rule.Phrases {
			if strings.Contains(text, p) {
				return rule.Period, rule.Label
			}
		}
	}
	return "1d", "Today"
}

// -----------------------------------------------------------------------------

func scoutRespond(ctx context.Context, rc *models.MRequestContext, tk *Toolkit) (models.MResponderOutput, error) {
	period, label := DetectPeriod(rc.UserInput())
	if tk.Market == nil {
		return models.MResponderOutput{}, helpers.Unavailable("market data", errNoMarket)
	}

	// 1. Fetch each watchlist ticker; failures drop out
	watchlist := tk.watchlist()
	slots := make([]*models.MMover, len(watchlist))
	_ = tk.each(ctx, len(watchlist), func(ctx context.Context, i int) error {
		slots[i] = tk.mover(ctx, watchlist[i], period)
		return nil
	})

	movers := make([]models.MMover, 0, len(slots))
	for _, m := range slots {
		if m != nil {
			movers = append(movers, *m)
		}
	}
	if len(movers) == 0 {
		return models.MResponderOutput{}, helpers.Unavailable("market data", errNoMovers)
	}

	// 2. Rank by absolute move
	sort.SliceStable(movers, func(i, j int) bool {
		return math.Abs(movers[i].ChangePercent) > math.Abs(movers[j].ChangePercent)
	})
	gainers, losers := topMovers(movers)

	marketOpen := false
	if tk.Scheduler != nil {
		marketOpen = tk.Scheduler.AnyMarketOpen()
	}

	// 3. Render
	text := FormatMovers(label, gainers, losers)
	if tk.Scheduler != nil {
		text += marketStatusLine(marketOpen)
	}
	if strings.Contains(label, "Momentum") {
		text += momentumNote
	}

	return models.MResponderOutput{
		Role: models.RoleScout,
		Text: text,
		StructuredData: map[string]interface{}{
			"top_gainers":  gainers,
			"top_losers":   losers,
			"all_movers":   movers,
			"period":       period,
			"period_label": label,
			"market_open":  marketOpen,
		},
	}, nil
}

func scoutFallback(_ *models.MRequestContext) models.MResponderOutput {
	return fallbackOutput(models.RoleScout, scoutFallbackText, nil)
}

// -----------------------------------------------------------------------------

// mover measures one ticker over the period: first to last close, or against
// the previous close when only one bar came back.
func (tk *Toolkit) mover(ctx context.Context, ticker, period string) *models.MMover {
	h, err := tk.history(ctx, ticker, period)
	if err != nil || len(h.Bars) == 0 {
		tk.Logger.Debug("History for %s (%s) unavailable: %v", ticker, period, err)
		return nil
	}

	current := h.Bars[len(h.Bars)-1].Close
	start := current
	name := ticker
	if q, err := tk.quote(ctx, ticker); err == nil {
		if q.Name != "" {
			name = q.Name
		}
		if len(h.Bars) == 1 && q.PreviousClose != 0 {
			start = q.PreviousClose
		}
	}
	if len(h.Bars) > 1 {
		start = h.Bars[0].Close
	}

	change := 0.0
	if start != 0 {
		change = (current - start) / start * 100
	}
	return &models.MMover{
		Ticker:        ticker,
		Name:          name,
		Price:         utils.Round(current, 2),
		ChangePercent: utils.Round(change, 2),
	}
}

func topMovers(ranked []models.MMover) ([]models.MMover, []models.MMover) {
	gainers, losers := []models.MMover{}, []models.MMover{}
	for _, m := range ranked {
		if m.ChangePercent > 0 && len(gainers) < 3 {
			gainers = append(gainers, m)
		}
		if m.ChangePercent < 0 && len(losers) < 3 {
			losers = append(losers, m)
		}
	}
	return gainers, losers
}

// -----------------------------------------------------------------------------

// FormatMovers renders the gainers and losers blocks under a period header.
func FormatMovers(label string, gainers, losers []models.MMover) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**🌍 Market Movers — %s**\n\n", label)

	block := func(title string, list []models.MMover) {
		if len(list) == 0 {
			return
		}
		b.WriteString(title + "\n")
		for _, m := range list {
			fmt.Fprintf(&b, "- **%s** (%s): $%s (%s%%)\n", m.Ticker, m.Name, utils.Fixed(m.Price, 2), utils.Signed(m.ChangePercent, 1))
		}
		b.WriteString("\n")
	}
	block("**📈 Top Gainers:**", gainers)
	block("**📉 Top Losers:**", losers)

	b.WriteString("*Showing major tech & index movers. Ask about a specific sector for more!*")
	return b.String()
}

func marketStatusLine(open bool) string {
	if open {
		return "\n\n🕒 *US markets are open right now.*"
	}
	return "\n\n🕒 *US markets are closed right now; prices reflect the last session.*"
}
