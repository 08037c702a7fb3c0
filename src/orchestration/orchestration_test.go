package orchestration

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"finnie/src/agents"
	"finnie/src/analysis"
	"finnie/src/compliance"
	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestOrchestrator(t *testing.T, parallel bool) (*Orchestrator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewLoggerFromZap(zap.New(core), "test")

	cfg := &models.MConfig{}
	cfg.Orchestrator.NumSimulations = 300
	cfg.Orchestrator.ParallelDispatch = parallel

	tk := &agents.Toolkit{
		Config:   cfg,
		Logger:   log,
		Analysis: analysis.NewAnalysisFacade(cfg, log).WithRand(rand.New(rand.NewSource(42))),
	}
	return NewOrchestrator(cfg, tk, log), logs
}

// -----------------------------------------------------------------------------
// Classifier
// -----------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	tests := []struct {
		in     string
		intent models.Intent
		conf   float64
	}{
		{"What is the price of AAPL?", models.IntentMarketData, 0.95},
		{"how is $TSLA doing", models.IntentMarketData, 0.95},
		{"Explain what a quote is", models.IntentMarketData, 0.95},
		{"What is a P/E ratio?", models.IntentEducation, 0.90},
		{"Any headlines on Nvidia?", models.IntentNews, 0.90},
		{"Should I rebalance my holdings?", models.IntentPortfolio, 0.90},
		{"If I invest $10,000 initially and add $500 monthly for 10 years", models.IntentProjection, 0.85},
		{"What's trending today", models.IntentTrend, 0.85},
		{"Compare AAPL vs GOOGL", models.IntentComparison, 0.90},
		{"hello there", models.IntentGeneral, 0.70},
		{"", models.IntentGeneral, 0.70},
		{"PRICELESS advice", models.IntentGeneral, 0.70},
	}
	for _, tt := range tests {
		intent, conf := Classify(tt.in)
		assert.Equal(t, tt.intent, intent, tt.in)
		assert.Equal(t, tt.conf, conf, tt.in)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	valid := make(map[models.Intent]bool)
	for _, i := range models.AllIntents {
		valid[i] = true
	}
	for _, in := range []string{"???", "💸💸", strings.Repeat("why ", 1000), "\x00\xff"} {
		intent, _ := Classify(in)
		assert.True(t, valid[intent], in)
	}
}

// -----------------------------------------------------------------------------
// Intent map
// -----------------------------------------------------------------------------

func TestSelectRoles(t *testing.T) {
	assert.Equal(t,
		[]models.Role{models.RoleQuant, models.RoleAnalyst, models.RoleGuardian, models.RoleScribe},
		SelectRoles(models.IntentComparison))
	assert.Equal(t,
		[]models.Role{models.RoleOracle, models.RoleQuant, models.RoleGuardian, models.RoleScribe},
		SelectRoles(models.IntentProjection))
	assert.Equal(t,
		[]models.Role{models.RoleProfessor, models.RoleGuardian, models.RoleScribe},
		SelectRoles(models.Intent("unheard_of")))

	for _, intent := range models.AllIntents {
		roles := SelectRoles(intent)
		require.GreaterOrEqual(t, len(roles), 3)
		assert.Equal(t, models.RoleGuardian, roles[len(roles)-2])
		assert.Equal(t, models.RoleScribe, roles[len(roles)-1])
	}
}

func TestRolesForReturnsCopy(t *testing.T) {
	roles := RolesFor(models.IntentPortfolio)
	roles[0] = models.RoleScout
	assert.Equal(t, models.RoleAdvisor, RolesFor(models.IntentPortfolio)[0])
}

// -----------------------------------------------------------------------------
// Dispatcher
// -----------------------------------------------------------------------------

func stubEntry(role models.Role, respond agents.Responder) agents.Entry {
	return agents.Entry{
		Role:    role,
		Respond: respond,
		Fallback: func(*models.MRequestContext) models.MResponderOutput {
			return models.MResponderOutput{Text: string(role) + " fallback"}
		},
	}
}

func testDispatcher(table map[models.Role]agents.Entry, parallel bool) *Dispatcher {
	log := logger.NewLoggerFromZap(zap.NewNop(), "test")
	return NewDispatcher(table, &agents.Toolkit{Logger: log}, parallel, log, helpers.NewErrorHandler(log))
}

func TestDispatcherFallsBackOnErrorAndPanic(t *testing.T) {
	table := map[models.Role]agents.Entry{
		models.RoleQuant: stubEntry(models.RoleQuant, func(context.Context, *models.MRequestContext, *agents.Toolkit) (models.MResponderOutput, error) {
			return models.MResponderOutput{}, helpers.Unavailable("market data", errors.New("timeout"))
		}),
		models.RoleAnalyst: stubEntry(models.RoleAnalyst, func(context.Context, *models.MRequestContext, *agents.Toolkit) (models.MResponderOutput, error) {
			panic("boom")
		}),
		models.RoleScout: stubEntry(models.RoleScout, func(context.Context, *models.MRequestContext, *agents.Toolkit) (models.MResponderOutput, error) {
			return models.MResponderOutput{Text: "live"}, nil
		}),
	}
	d := testDispatcher(table, false)
	rc := models.NewRequestContext(models.MTurnRequest{UserInput: "x"})

	outs, err := d.Dispatch(context.Background(), []models.Role{models.RoleQuant, models.RoleAnalyst, models.RoleScout, models.RoleGuardian, models.RoleScribe}, rc)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	assert.Equal(t, models.RoleQuant, outs[0].Role)
	assert.Equal(t, "quant fallback", outs[0].Text)
	assert.True(t, outs[0].Fallback)
	assert.Equal(t, models.RoleAnalyst, outs[1].Role)
	assert.Equal(t, "analyst fallback", outs[1].Text)
	assert.Equal(t, "live", outs[2].Text)
	assert.Equal(t, models.RoleScout, outs[2].Role)
	assert.False(t, outs[2].Fallback)

	snap := d.Errors.Snapshot()
	assert.Equal(t, 2, snap["total"])
}

func TestDispatcherUnknownRoleInvokesNothing(t *testing.T) {
	var calls int32
	table := map[models.Role]agents.Entry{
		models.RoleQuant: stubEntry(models.RoleQuant, func(context.Context, *models.MRequestContext, *agents.Toolkit) (models.MResponderOutput, error) {
			atomic.AddInt32(&calls, 1)
			return models.MResponderOutput{Text: "q"}, nil
		}),
	}
	d := testDispatcher(table, false)
	rc := models.NewRequestContext(models.MTurnRequest{UserInput: "x"})

	_, err := d.Dispatch(context.Background(), []models.Role{models.RoleQuant, models.Role("astrologer")}, rc)
	require.Error(t, err)
	assert.True(t, helpers.IsContractViolation(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	_, err = d.Dispatch(context.Background(), []models.Role{models.RoleQuant}, nil)
	assert.True(t, helpers.IsContractViolation(err))
}

func TestDispatcherContractErrorPropagates(t *testing.T) {
	table := map[models.Role]agents.Entry{
		models.RoleQuant: stubEntry(models.RoleQuant, func(context.Context, *models.MRequestContext, *agents.Toolkit) (models.MResponderOutput, error) {
			return models.MResponderOutput{}, helpers.ContractViolation("malformed context")
		}),
	}
	d := testDispatcher(table, false)
	_, err := d.Dispatch(context.Background(), []models.Role{models.RoleQuant}, models.NewRequestContext(models.MTurnRequest{UserInput: "x"}))
	assert.True(t, helpers.IsContractViolation(err))
}

func TestParallelDispatchKeepsRoleOrder(t *testing.T) {
	slow := func(delay time.Duration, text string) agents.Responder {
		return func(ctx context.Context, _ *models.MRequestContext, _ *agents.Toolkit) (models.MResponderOutput, error) {
			time.Sleep(delay)
			return models.MResponderOutput{Text: text}, nil
		}
	}
	table := map[models.Role]agents.Entry{
		models.RoleQuant:   stubEntry(models.RoleQuant, slow(30*time.Millisecond, "first")),
		models.RoleAnalyst: stubEntry(models.RoleAnalyst, slow(0, "second")),
	}
	d := testDispatcher(table, true)
	outs, err := d.Dispatch(context.Background(), []models.Role{models.RoleQuant, models.RoleAnalyst}, models.NewRequestContext(models.MTurnRequest{UserInput: "x"}))
	require.NoError(t, err)
	assert.Equal(t, "first", outs[0].Text)
	assert.Equal(t, "second", outs[1].Text)
}

// -----------------------------------------------------------------------------
// RunTurn
// -----------------------------------------------------------------------------

func TestRunTurnProjectionScenario(t *testing.T) {
	o, _ := newTestOrchestrator(t, false)

	res, err := o.RunTurn(context.Background(), models.MTurnRequest{
		UserInput: "If I invest $10,000 initially and add $500 monthly for 10 years",
		SessionID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentProjection, res.Intent)
	assert.Equal(t, []models.Role{models.RoleOracle, models.RoleQuant, models.RoleGuardian, models.RoleScribe}, res.Roles)
	require.Len(t, res.Outputs, 4)
	for i, role := range res.Roles {
		assert.Equal(t, role, res.Outputs[i].Role)
	}

	oracle := res.Outputs[0]
	assert.Contains(t, oracle.Text, "Conservative")
	assert.Contains(t, oracle.Text, "Expected")
	assert.Contains(t, oracle.Text, "Optimistic")
	sim := oracle.StructuredData["simulation"].(map[string]interface{})
	assert.Equal(t, 70000.0, sim["total_contributions"])

	// the quant's ticker request is dropped; the oracle text passes through
	assert.Empty(t, res.Outputs[1].Text)
	pkg := res.Package
	assert.Equal(t, []string{compliance.BaseDisclaimer}, pkg.Disclaimers)
	assert.Equal(t, oracle.Text+"\n\n---\n⚠️ "+compliance.BaseDisclaimer, pkg.FinalText)
	require.NotNil(t, pkg.PrimaryRole)
	assert.Equal(t, models.RoleOracle, *pkg.PrimaryRole)
	require.Len(t, pkg.Visualizations, 1)
	assert.Equal(t, "projection_chart", pkg.Visualizations[0].Type)
}

func TestRunTurnComparisonScenario(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		o, _ := newTestOrchestrator(t, parallel)

		res, err := o.RunTurn(context.Background(), models.MTurnRequest{UserInput: "Compare AAPL vs GOOGL"})
		require.NoError(t, err)

		assert.Equal(t, models.IntentComparison, res.Intent)
		assert.Equal(t, 0.90, res.Confidence)
		assert.Equal(t, []models.Role{models.RoleQuant, models.RoleAnalyst, models.RoleGuardian, models.RoleScribe}, res.Roles)

		quant, analyst := res.Outputs[0], res.Outputs[1]
		assert.Equal(t, "I couldn't find data for the ticker(s): AAPL, GOOGL. Please verify the symbol(s).", quant.Text)
		assert.True(t, strings.HasPrefix(analyst.Text, "**Market Analysis for AAPL, GOOGL**"))

		// both sections are short, so they are joined without headers
		want := quant.Text + "\n\n" + analyst.Text + "\n\n---\n⚠️ " + compliance.BaseDisclaimer
		assert.Equal(t, want, res.Package.FinalText)
		assert.Equal(t, models.RoleQuant, *res.Package.PrimaryRole)
		assert.Empty(t, res.Package.Visualizations)

		assert.Equal(t, "low", res.Outputs[2].StructuredData["risk_level"])
		assert.Equal(t, 2, res.Outputs[3].StructuredData["sections"])
	}
}

func TestRunTurnEducationFallback(t *testing.T) {
	o, _ := newTestOrchestrator(t, false)
	res, err := o.RunTurn(context.Background(), models.MTurnRequest{UserInput: "What is a P/E ratio?"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Package.FinalText, "**P/E Ratio (Price-to-Earnings Ratio)**"))
	assert.Equal(t, models.RoleProfessor, *res.Package.PrimaryRole)
}

func TestRunTurnHighRiskDisclaimers(t *testing.T) {
	o, _ := newTestOrchestrator(t, false)
	res, err := o.RunTurn(context.Background(), models.MTurnRequest{UserInput: "should I buy TSLA"})
	require.NoError(t, err)
	assert.Len(t, res.Package.Disclaimers, 3)
	// the footer carries the first two only
	assert.True(t, strings.HasSuffix(res.Package.FinalText,
		"\n\n---\n⚠️ "+compliance.BaseDisclaimer+" | ⚠️ "+compliance.HighRiskDisclaimer))
}

func TestRunTurnRejectsEmptyInput(t *testing.T) {
	o, _ := newTestOrchestrator(t, false)
	_, err := o.RunTurn(context.Background(), models.MTurnRequest{UserInput: "   "})
	require.Error(t, err)
	assert.True(t, helpers.IsContractViolation(err))
}

func TestRunTurnNeverLogsAPIKey(t *testing.T) {
	o, logs := newTestOrchestrator(t, false)
	secret := "sk-very-secret-key"

	// no factory is wired, so generation is unavailable and the fallback runs
	res, err := o.RunTurn(context.Background(), models.MTurnRequest{
		UserInput: "Explain dividends",
		Provider:  models.MProviderConfig{Provider: "openai", Model: "gpt-4o", APIKey: secret},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Package.FinalText, "**Dividends**"))

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, secret)
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, secret)
		}
	}
	assert.Equal(t, 1, o.Errors.Snapshot()["total"])
}
