package knowledge

import (
	"context"
	"path/filepath"
	"testing"

	"finnie/src/logger"
	"finnie/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededBase(t *testing.T, cfg *models.MConfig) *SQLKnowledgeBase {
	t.Helper()
	cfg.Knowledge.Seed = true
	kb := NewSQLKnowledgeBase(cfg, logger.NewLoggerFromZap(zap.NewNop(), "Knowledge"))
	require.NoError(t, kb.Initialize(context.Background()))
	t.Cleanup(func() { kb.Close() })
	return kb
}

func TestLookupConcept(t *testing.T) {
	kb := seededBase(t, &models.MConfig{})
	ctx := context.Background()

	text, ok := kb.LookupConcept(ctx, "P/E")
	require.True(t, ok)
	assert.Equal(t, "**P/E Ratio** (Difficulty: beginner)\n"+
		"Definition: The share price divided by earnings per share; what investors pay for each dollar of profit.\n"+
		"Key Takeaway: A high P/E can signal growth expectations, a low one undervaluation or trouble.\n"+
		"Related concepts: EPS, Market Cap", text)

	// topic longer than the name, longest name wins
	text, ok = kb.LookupConcept(ctx, "what is a dividend yield")
	require.True(t, ok)
	assert.Contains(t, text, "**Dividend Yield**")

	text, ok = kb.LookupConcept(ctx, "exchange traded fund")
	require.True(t, ok)
	assert.Contains(t, text, "**ETF**")

	_, ok = kb.LookupConcept(ctx, "quantum entanglement")
	assert.False(t, ok)
	_, ok = kb.LookupConcept(ctx, "  ")
	assert.False(t, ok)
}

func TestLookupCompany(t *testing.T) {
	kb := seededBase(t, &models.MConfig{})

	text, ok := kb.LookupCompany(context.Background(), "aapl")
	require.True(t, ok)
	assert.Equal(t, "**Apple Inc.** (AAPL)\n"+
		"Sector: Technology | Industry: Consumer Electronics\n"+
		"Market Cap: $3000.0B\n"+
		"P/E Ratio: 29.5\n"+
		"Sector ETFs: XLK (Technology Select Sector SPDR Fund)\n"+
		"Sector peers: MSFT, NVDA", text)

	text, ok = kb.LookupCompany(context.Background(), "brk.b")
	require.True(t, ok)
	assert.Contains(t, text, "(BRK-B)")

	_, ok = kb.LookupCompany(context.Background(), "ZZZZ")
	assert.False(t, ok)
}

func TestLookupSector(t *testing.T) {
	kb := seededBase(t, &models.MConfig{})

	text, ok := kb.LookupSector(context.Background(), "consumer staples")
	require.True(t, ok)
	assert.Equal(t, "**Consumer Staples** Sector\n"+
		"Description: Food, beverages, household goods and other essentials.\n"+
		"Top companies: PG (The Procter & Gamble Company), KO (The Coca-Cola Company)\n"+
		"Sector ETFs: XLP (Consumer Staples Select Sector SPDR Fund)", text)

	_, ok = kb.LookupSector(context.Background(), "crypto")
	assert.False(t, ok)
}

func TestUninitializedBaseIsANoOp(t *testing.T) {
	kb := NewSQLKnowledgeBase(&models.MConfig{}, logger.NewLoggerFromZap(zap.NewNop(), "Knowledge"))
	ctx := context.Background()

	_, ok := kb.LookupConcept(ctx, "etf")
	assert.False(t, ok)
	_, ok = kb.LookupCompany(ctx, "AAPL")
	assert.False(t, ok)
	_, ok = kb.LookupSector(ctx, "Energy")
	assert.False(t, ok)
	assert.NoError(t, kb.Close())
}

func TestSeedRunsOnceOnSharedFile(t *testing.T) {
	cfg := &models.MConfig{}
	cfg.Storage.DBType = "sqlite"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "finnie.db")

	first := seededBase(t, cfg)
	require.NoError(t, first.Close())

	second := seededBase(t, cfg)
	var n int
	require.NoError(t, second.DB.QueryRow("SELECT COUNT(*) FROM concepts").Scan(&n))
	assert.Equal(t, len(seedConcepts), n)
}
