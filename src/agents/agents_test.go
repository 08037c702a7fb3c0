package agents

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"finnie/src/analysis"
	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeMarket struct {
	quotes    map[string]*models.MQuote
	histories map[string]*models.MHistory
}

func (f *fakeMarket) GetQuote(_ context.Context, ticker string) (*models.MQuote, error) {
	if q, ok := f.quotes[ticker]; ok {
		return q, nil
	}
	return nil, helpers.ErrNotFound
}

func (f *fakeMarket) GetHistory(_ context.Context, ticker, period string) (*models.MHistory, error) {
	if h, ok := f.histories[ticker]; ok {
		return h, nil
	}
	return nil, helpers.ErrNotFound
}

func (f *fakeMarket) GetSectorPerformance(context.Context, string) ([]models.MSectorPerformance, error) {
	return nil, nil
}

func (f *fakeMarket) GetCompanyInfo(context.Context, string) (*models.MCompanyInfo, error) {
	return nil, helpers.ErrNotFound
}

type fakeModel struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) Provider() string { return "openai" }

func (f *fakeModel) Generate(_ context.Context, _ []models.MChatTurn, systemPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt = systemPrompt
	return f.reply, f.err
}

type fakeFactory struct{ model *fakeModel }

func (f fakeFactory) For(models.MProviderConfig) (interfaces.ILanguageModel, error) {
	return f.model, nil
}

type fakeKnowledge struct{}

func (fakeKnowledge) LookupConcept(_ context.Context, name string) (string, bool) {
	if name == "compound interest" {
		return "**Compound Interest**\nDefinition: interest on interest", true
	}
	return "", false
}
func (fakeKnowledge) LookupCompany(context.Context, string) (string, bool) { return "", false }
func (fakeKnowledge) LookupSector(context.Context, string) (string, bool)  { return "", false }

func testToolkit() *Toolkit {
	cfg := &models.MConfig{}
	cfg.Orchestrator.NumSimulations = 200
	log := logger.NewLoggerFromZap(zap.NewNop(), "test")
	return &Toolkit{
		Config:   cfg,
		Logger:   log,
		Analysis: analysis.NewAnalysisFacade(cfg, log).WithRand(rand.New(rand.NewSource(7))),
	}
}

func request(text string) *models.MRequestContext {
	return models.NewRequestContext(models.MTurnRequest{UserInput: text})
}

func ptr(v float64) *float64 { return &v }

// -----------------------------------------------------------------------------
// Professor
// -----------------------------------------------------------------------------

func TestExtractTopic(t *testing.T) {
	assert.Equal(t, "p/e ratio", ExtractTopic("What is a P/E ratio?"))
	assert.Equal(t, "compound interest", ExtractTopic("Explain compound interest!!"))
	assert.Equal(t, "bonds work", ExtractTopic("how do bonds work."))
	assert.Equal(t, "why is the sky blue", ExtractTopic("Why is the sky blue?"))
}

func TestProfessorFallback(t *testing.T) {
	out := professorFallback(request("What is a P/E ratio?"))
	assert.True(t, strings.HasPrefix(out.Text, "**P/E Ratio (Price-to-Earnings Ratio)**"))
	assert.True(t, out.Fallback)

	out = professorFallback(request("Tell me about ETFs"))
	assert.True(t, strings.HasPrefix(out.Text, "**ETF (Exchange-Traded Fund)**"))

	out = professorFallback(request("What is a bond?"))
	assert.True(t, strings.HasPrefix(out.Text, `I'd be happy to help with **"bond"**, but I need an LLM API key`))
	assert.Equal(t, "bond", out.StructuredData["topic"])
}

func TestProfessorGeneratesWithContextAndHistory(t *testing.T) {
	tk := testToolkit()
	model := &fakeModel{reply: "Compounding explained."}
	tk.LLM = fakeFactory{model}
	tk.Knowledge = fakeKnowledge{}

	rc := models.NewRequestContext(models.MTurnRequest{
		UserInput: "Explain compound interest",
		Provider:  models.MProviderConfig{Provider: "openai", Model: "gpt-4o", APIKey: "sk-test"},
		History:   "Recent conversation history:\n- [2026-01-02] Bonds: Asked about yields",
	})
	out, err := professorRespond(context.Background(), rc, tk)
	require.NoError(t, err)
	assert.Equal(t, "Compounding explained.", out.Text)
	assert.False(t, out.Fallback)
	assert.Contains(t, model.prompt, "You are The Professor")
	assert.Contains(t, model.prompt, "Definition: interest on interest")
	assert.Contains(t, model.prompt, "Recent conversation history:")
}

func TestGenerateFailureIsUnavailable(t *testing.T) {
	tk := testToolkit()
	tk.LLM = fakeFactory{&fakeModel{err: errors.New("401 unauthorized")}}
	rc := models.NewRequestContext(models.MTurnRequest{
		UserInput: "Explain bonds",
		Provider:  models.MProviderConfig{Provider: "openai", APIKey: "bad"},
	})
	_, err := professorRespond(context.Background(), rc, tk)
	require.Error(t, err)
	assert.True(t, helpers.IsUnavailable(err))

	tk.LLM = fakeFactory{&fakeModel{reply: "   "}}
	_, err = analystRespond(context.Background(), rc, tk)
	assert.True(t, helpers.IsUnavailable(err))
}

// -----------------------------------------------------------------------------
// Analyst
// -----------------------------------------------------------------------------

func TestAnalystFallback(t *testing.T) {
	out := analystFallback(request("Any news on AAPL and TSLA?"))
	assert.True(t, strings.HasPrefix(out.Text, "**Market Analysis for AAPL, TSLA**"))
	assert.False(t, out.Clarification)

	out = analystFallback(request("what's the market sentiment"))
	assert.True(t, strings.HasPrefix(out.Text, "**Market Analysis**\n\nI'd be happy to analyze"))
	assert.True(t, out.Clarification)
}

func TestAnalystIgnoresHostResolvedTickers(t *testing.T) {
	rc := models.NewRequestContext(models.MTurnRequest{UserInput: "any news on apple?", Tickers: []string{"AAPL"}})

	out := analystFallback(rc)
	assert.True(t, strings.HasPrefix(out.Text, "**Market Analysis**\n\nI'd be happy to analyze"))
	assert.True(t, out.Clarification)
	assert.Equal(t, []string{}, out.StructuredData["tickers"])
}

// -----------------------------------------------------------------------------
// Advisor
// -----------------------------------------------------------------------------

func TestAnalyzePortfolio(t *testing.T) {
	out := AnalyzePortfolio(&models.MPortfolio{Holdings: []models.MHolding{
		{Ticker: "MSFT", Value: 3000},
		{Ticker: "AAPL", Value: 6000},
		{Ticker: "GOOGL", Value: 1000},
	}})

	want := "**Portfolio Analysis**\n\n**Total Value:** $10,000.00\n\n**Allocation:**\n" +
		"- **AAPL**: 60.0% ($6,000.00) ████████████\n" +
		"- **MSFT**: 30.0% ($3,000.00) ██████\n" +
		"- **GOOGL**: 10.0% ($1,000.00) ██\n" +
		"\n⚠️ **Concentration Alert:** AAPL represents over 40% of your portfolio.\n" +
		"\n*For personalized advice, please consult a licensed financial advisor.*"
	assert.Equal(t, want, out.Text)
	assert.Equal(t, 10000.0, out.StructuredData["total_value"])
	require.Len(t, out.Visualizations, 1)
	assert.Equal(t, "allocation_chart", out.Visualizations[0].Type)
}

func TestAdvisorPaths(t *testing.T) {
	tk := testToolkit()

	out, err := advisorRespond(context.Background(), request("How is my portfolio?"), tk)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Text, "**Portfolio Analysis**\n\nI don't have your portfolio data yet."))

	rc := models.NewRequestContext(models.MTurnRequest{UserInput: "rebalance", Portfolio: &models.MPortfolio{}})
	out, err = advisorRespond(context.Background(), rc, tk)
	require.NoError(t, err)
	assert.Equal(t, advisorEmpty, out.Text)

	rc = models.NewRequestContext(models.MTurnRequest{
		UserInput: "rebalance",
		Portfolio: &models.MPortfolio{Holdings: []models.MHolding{
			{Ticker: "BND", Value: 35}, {Ticker: "VTI", Value: 40}, {Ticker: "GLD", Value: 25},
		}},
	})
	out, err = advisorRespond(context.Background(), rc, tk)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "**Allocation:**\n- **VTI**: 40.0% ($40.00) ████████\n- **BND**: 35.0% ($35.00) ███████\n")
	assert.NotContains(t, out.Text, "Concentration Alert")
}

// -----------------------------------------------------------------------------
// Oracle
// -----------------------------------------------------------------------------

func TestOracleProjection(t *testing.T) {
	out, err := oracleRespond(context.Background(), request("If I invest $10,000 initially and add $500 monthly for 10 years"), testToolkit())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.Text, "**🔮 Investment Projection**\n\n**Inputs:**\n- Initial Investment: $10,000.00\n- Monthly Contribution: $500.00\n- Time Horizon: 10 years"))
	assert.Contains(t, out.Text, "| 📉 Conservative (10th percentile) | $")
	assert.Contains(t, out.Text, "| 📊 Expected (50th percentile) | $")
	assert.Contains(t, out.Text, "| 📈 Optimistic (90th percentile) | $")
	assert.Contains(t, out.Text, "**Total Contributions:** $70,000.00")
	assert.Contains(t, out.Text, "- Average annual return: 8% (historical S&P 500)")

	sim := out.StructuredData["simulation"].(map[string]interface{})
	assert.Equal(t, 70000.0, sim["total_contributions"])
	assert.LessOrEqual(t, sim["conservative"].(float64), sim["expected"].(float64))
	assert.LessOrEqual(t, sim["expected"].(float64), sim["optimistic"].(float64))

	require.Len(t, out.Visualizations, 1)
	assert.Equal(t, "projection_chart", out.Visualizations[0].Type)
	assert.Equal(t, "Investment Projection", out.Visualizations[0].Title)
}

func TestOracleAsksForParameters(t *testing.T) {
	out, err := oracleRespond(context.Background(), request("will my money grow?"), testToolkit())
	require.NoError(t, err)
	assert.Equal(t, oracleParameterRequest, out.Text)
	assert.True(t, out.Clarification)
}

func TestOracleCapsHorizon(t *testing.T) {
	out, err := oracleRespond(context.Background(), request("invest $1000 initially for 999999 years"), testToolkit())
	require.NoError(t, err)
	assert.Contains(t, out.Text, "- Time Horizon: 100 years")
}

func TestOracleStopsWhenTurnIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := oracleRespond(ctx, request("If I invest $10,000 initially for 10 years"), testToolkit())
	assert.True(t, helpers.IsUnavailable(err))
	assert.ErrorIs(t, err, context.Canceled)
}

// -----------------------------------------------------------------------------
// Quant
// -----------------------------------------------------------------------------

func appleQuote() *models.MQuote {
	return &models.MQuote{
		Ticker: "AAPL", Name: "Apple Inc.", Price: 150.25, Change: 1.5, ChangePercent: 1.01,
		Open: 149, DayLow: 148.5, DayHigh: 151, FiftyTwoWeekLow: 120, FiftyTwoWeekHigh: 180,
		Volume: 1234567, MarketCap: 2500000000000, PERatio: ptr(28.5),
		Sector: "Technology", Industry: "Consumer Electronics",
	}
}

func TestQuantSingleCard(t *testing.T) {
	tk := testToolkit()
	tk.Market = &fakeMarket{quotes: map[string]*models.MQuote{"AAPL": appleQuote()}}

	out, err := quantRespond(context.Background(), request("What's the price of $AAPL?"), tk)
	require.NoError(t, err)

	want := "**Apple Inc.** (AAPL)\n\n" +
		"**Current Price:** $150.25 📈 +$1.50 (+1.01%)\n\n" +
		"| Metric | Value |\n|--------|-------|\n" +
		"| Open | $149.00 |\n" +
		"| Day Range | $148.50 - $151.00 |\n" +
		"| 52-Week Range | $120.00 - $180.00 |\n" +
		"| Volume | 1,234,567 |\n" +
		"| Market Cap | $2,500,000,000,000 |\n" +
		"| P/E Ratio | 28.50 |\n\n" +
		"**Sector:** Technology | **Industry:** Consumer Electronics"
	assert.Equal(t, want, out.Text)
	assert.False(t, out.Clarification)
}

func TestQuantComparisonTable(t *testing.T) {
	tk := testToolkit()
	tk.Market = &fakeMarket{quotes: map[string]*models.MQuote{
		"AAPL": appleQuote(),
		"MSFT": {Ticker: "MSFT", Name: "Microsoft", Price: 410, ChangePercent: -0.42, MarketCap: 3100000000000,
			FiftyTwoWeekLow: 309.45, FiftyTwoWeekHigh: 468.35},
	}}

	out, err := quantRespond(context.Background(), request("compare AAPL and MSFT"), tk)
	require.NoError(t, err)

	want := "| Metric | AAPL | MSFT |\n" +
		"|--------|--------|--------|\n" +
		"| Price | $150.25 (+1.0%) | $410.00 (-0.4%) |\n" +
		"| Market Cap | $2.5T | $3.1T |\n" +
		"| P/E Ratio | 28.50 | N/A |\n" +
		"| 52W Range | $120-$180 | $309-$468 |"
	assert.Equal(t, want, out.Text)
}

func TestQuantClarifications(t *testing.T) {
	tk := testToolkit()
	tk.Market = &fakeMarket{}

	out, err := quantRespond(context.Background(), request("how are stocks doing"), tk)
	require.NoError(t, err)
	assert.Equal(t, quantNoTickers, out.Text)
	assert.True(t, out.Clarification)

	out, err = quantRespond(context.Background(), request("Compare AAPL vs GOOGL"), tk)
	require.NoError(t, err)
	assert.Equal(t, "I couldn't find data for the ticker(s): AAPL, GOOGL. Please verify the symbol(s).", out.Text)
	assert.True(t, out.Clarification)

	assert.Equal(t, out.Text, quantFallback(request("Compare AAPL vs GOOGL")).Text)
}

func TestQuantUsesResolvedTickers(t *testing.T) {
	tk := testToolkit()
	tk.Market = &fakeMarket{quotes: map[string]*models.MQuote{"AAPL": appleQuote()}}
	rc := models.NewRequestContext(models.MTurnRequest{UserInput: "how is apple doing", Tickers: []string{"AAPL"}})

	out, err := quantRespond(context.Background(), rc, tk)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Text, "**Apple Inc.** (AAPL)"))
}

// -----------------------------------------------------------------------------
// Scout
// -----------------------------------------------------------------------------

func TestDetectPeriod(t *testing.T) {
	tests := []struct {
		in, period, label string
	}{
		{"what's hot today", "1d", "Today"},
		{"movers last week", "5d", "Past Week"},
		{"will the stock that moved last week keep going tomorrow", "5d", "Recent Momentum (past 5 days)"},
		{"top movers this month", "1mo", "Past Month"},
		{"best of the quarter", "3mo", "Past 3 Months"},
		{"popular over 6 months", "6mo", "Past 6 Months"},
		{"trending YTD", "1y", "Past Year"},
	}
	for _, tt := range tests {
		period, label := DetectPeriod(tt.in)
		assert.Equal(t, tt.period, period, tt.in)
		assert.Equal(t, tt.label, label, tt.in)
	}
}

func bars(closes ...float64) *models.MHistory {
	h := &models.MHistory{}
	for _, c := range closes {
		h.Bars = append(h.Bars, models.MHistoryBar{Close: c})
	}
	return h
}

func TestScoutRanksMovers(t *testing.T) {
	tk := testToolkit()
	tk.Config.MarketData.Watchlist = []string{"AAA", "BBB", "CCC"}
	tk.Market = &fakeMarket{
		quotes: map[string]*models.MQuote{
			"AAA": {Ticker: "AAA", Name: "Alpha"},
			"CCC": {Ticker: "CCC", Name: "Charlie", PreviousClose: 40},
		},
		histories: map[string]*models.MHistory{
			"AAA": bars(100, 105, 110),
			"BBB": bars(100, 95),
			"CCC": bars(50),
		},
	}

	out, err := scoutRespond(context.Background(), request("what's hot today"), tk)
	require.NoError(t, err)

	want := "**🌍 Market Movers — Today**\n\n" +
		"**📈 Top Gainers:**\n" +
		"- **CCC** (Charlie): $50.00 (+25.0%)\n" +
		"- **AAA** (Alpha): $110.00 (+10.0%)\n\n" +
		"**📉 Top Losers:**\n" +
		"- **BBB** (BBB): $95.00 (-5.0%)\n\n" +
		"*Showing major tech & index movers. Ask about a specific sector for more!*"
	assert.Equal(t, want, out.Text)
	assert.Equal(t, "1d", out.StructuredData["period"])
}

func TestScoutMomentumNote(t *testing.T) {
	tk := testToolkit()
	tk.Config.MarketData.Watchlist = []string{"AAA"}
	tk.Market = &fakeMarket{histories: map[string]*models.MHistory{"AAA": bars(10, 11)}}

	out, err := scoutRespond(context.Background(), request("what will move tomorrow"), tk)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.Text, momentumNote))
	assert.Contains(t, out.Text, "Recent Momentum (past 5 days)")
}

func TestScoutUnavailable(t *testing.T) {
	tk := testToolkit()
	_, err := scoutRespond(context.Background(), request("trending"), tk)
	assert.True(t, helpers.IsUnavailable(err))

	tk.Market = &fakeMarket{}
	_, err = scoutRespond(context.Background(), request("trending"), tk)
	assert.True(t, helpers.IsUnavailable(err))

	assert.Equal(t, scoutFallbackText, scoutFallback(nil).Text)
}

// -----------------------------------------------------------------------------

func TestRegistryCoversEveryResponder(t *testing.T) {
	table := Registry()
	for _, role := range []models.Role{
		models.RoleQuant, models.RoleProfessor, models.RoleAnalyst,
		models.RoleAdvisor, models.RoleOracle, models.RoleScout,
	} {
		e, ok := table[role]
		require.True(t, ok, role)
		assert.Equal(t, role, e.Role)
		assert.NotNil(t, e.Respond)
		assert.NotNil(t, e.Fallback)
	}
	assert.NotContains(t, table, models.RoleGuardian)
}
