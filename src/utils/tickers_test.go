package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTickers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"dollar prefix", "$AAPL", []string{"AAPL"}},
		{"dollar inside question", "What's $AAPL trading at?", []string{"AAPL"}},
		{"joined ticker excludes its parts", "BRK-B is up", []string{"BRK-B"}},
		{"dotted ticker normalized", "how is BRK.B doing", []string{"BRK-B"}},
		{"dollar joined", "$BRK.A today", []string{"BRK-A"}},
		{"no false positive on IS", "IS this good", []string{}},
		{"bare whitelisted", "Tell me about MSFT", []string{"MSFT"}},
		{"comparison order", "Compare AAPL vs GOOGL", []string{"AAPL", "GOOGL"}},
		{"duplicates dropped", "AAPL and $AAPL and AAPL", []string{"AAPL"}},
		{"unknown bare word ignored", "ZZZZ is not listed", []string{}},
		{"dollar wins precedence", "MSFT then $XYZ", []string{"XYZ", "MSFT"}},
		{"numbers are not tickers", "If I invest $10,000 initially and add $500 monthly for 10 years", []string{}},
		{"lowercase still matches", "is tsla a good stock", []string{"TSLA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTickers(tt.in))
		})
	}
}

func TestResolveTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL"}, ResolveTickers("how is apple doing"))
	assert.Equal(t, []string{"GOOGL", "MSFT"}, ResolveTickers("google or MSFT"))
	assert.Equal(t, []string{"META"}, ResolveTickers("facebook stock"))
	assert.Equal(t, []string{}, ResolveTickers("hello there"))
	assert.Equal(t, []string{"AAPL"}, ResolveTickers("apple's earnings"))
	assert.Equal(t, []string{"INTC"}, ResolveTickers("should I buy intel?"))

	// company names inside longer words are not mentions
	assert.Equal(t, []string{}, ResolveTickers("any news on artificial intelligence stocks?"))
	assert.Equal(t, []string{}, ResolveTickers("what is the price of metal right now"))
	assert.Equal(t, []string{}, ResolveTickers("is the market exuberance over?"))
}

func TestCorrectAndNormalizeTicker(t *testing.T) {
	got, changed := CorrectTicker("APPL")
	assert.True(t, changed)
	assert.Equal(t, "AAPL", got)

	got, changed = CorrectTicker("BRKB")
	assert.True(t, changed)
	assert.Equal(t, "BRK-B", got)

	got, changed = CorrectTicker("NVDA")
	assert.False(t, changed)
	assert.Equal(t, "NVDA", got)

	assert.Equal(t, "BRK-B", NormalizeTicker(" $brk.b "))
}

func TestNormalizePeriod(t *testing.T) {
	assert.Equal(t, "6mo", NormalizePeriod("6mo"))
	assert.Equal(t, "1y", NormalizePeriod("7w"))
	assert.Equal(t, "1y", NormalizePeriod(""))
}
