package main

import (
	"bytes"
	"context"
	"testing"

	"finnie/src/logger"
	"finnie/src/mcp"
	"finnie/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrintModels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printModels(&buf))

	out := buf.String()
	assert.Contains(t, out, "PROVIDER")
	assert.Contains(t, out, "GPT-4o (default)")
	assert.Contains(t, out, "claude-sonnet-4-20250514")
	assert.Contains(t, out, "gemini-2.0-flash")
}

func TestPrintTools(t *testing.T) {
	log := logger.NewLoggerFromZap(zap.NewNop(), "Tools")

	var buf bytes.Buffer
	require.NoError(t, printTools(&buf, mcp.NewDefaultRegistry(nil, nil, log)))

	out := buf.String()
	for _, name := range []string{"get_stock_price", "get_historical_data", "create_price_chart", "create_sector_heatmap"} {
		assert.Contains(t, out, name)
	}
}

func TestPrintAnswer(t *testing.T) {
	role := models.RoleProfessor
	res := &models.MTurnResult{
		Package: &models.MFinalPackage{
			FinalText:   "Diversification spreads risk.",
			PrimaryRole: &role,
			Disclaimers: []string{"Educational only.", "Past performance is not indicative."},
		},
		Intent:     models.IntentEducation,
		Confidence: 0.8,
	}

	var buf bytes.Buffer
	require.NoError(t, printAnswer(&buf, res))
	assert.Equal(t, "[professor | education 0.80]\n\n"+
		"Diversification spreads risk.\n\n"+
		"* Educational only.\n"+
		"* Past performance is not indicative.\n", buf.String())
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	configPath = "does/not/exist.yaml"
	verbose = true
	t.Cleanup(func() {
		configPath = "config/default.yaml"
		verbose = false
	})

	conf, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "finnie", conf.Name)
	assert.Equal(t, "DEBUG", conf.LogLevel)
}

func TestSetupComponentsWithoutCollaborators(t *testing.T) {
	configPath = "does/not/exist.yaml"
	t.Cleanup(func() { configPath = "config/default.yaml" })

	conf, err := loadConfig()
	require.NoError(t, err)
	conf.Storage.DBType = "memory"
	conf.MarketData.Enabled = false
	conf.Knowledge.Enabled = false

	c, err := setupComponents(context.Background(), conf, true)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Market)
	assert.NotNil(t, c.Store)
	assert.Equal(t, 7, c.Tools.Count())

	res, err := c.Orch.RunTurn(context.Background(), models.MTurnRequest{
		UserInput: "What is a stock?",
		SessionID: "cli",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Package.FinalText)
	assert.NotEmpty(t, res.Package.Disclaimers)
}
