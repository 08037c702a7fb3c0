package compliance

import (
	"testing"

	"finnie/src/models"

	"github.com/stretchr/testify/assert"
)

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "buy question gets risk and buy/sell",
			in:   "should I buy TSLA",
			want: []string{BaseDisclaimer, HighRiskDisclaimer, BuySellDisclaimer},
		},
		{
			name: "price question only base",
			in:   "what is AAPL price",
			want: []string{BaseDisclaimer},
		},
		{
			name: "medium risk adds nothing",
			in:   "How should I invest?",
			want: []string{BaseDisclaimer},
		},
		{
			name: "crypto all in",
			in:   "I'm going all in on crypto",
			want: []string{BaseDisclaimer, HighRiskDisclaimer, CryptoDisclaimer},
		},
		{
			name: "options and crypto and buy now",
			in:   "Buy now: BTC call options?",
			want: []string{BaseDisclaimer, HighRiskDisclaimer, OptionsDisclaimer, CryptoDisclaimer, BuySellDisclaimer},
		},
		{
			name: "topic family without high risk",
			in:   "explain futures contracts",
			want: []string{BaseDisclaimer, OptionsDisclaimer},
		},
		{
			name: "ethereum is high risk crypto",
			in:   "tell me about ethereum",
			want: []string{BaseDisclaimer, HighRiskDisclaimer, CryptoDisclaimer},
		},
		{
			name: "good time to sell",
			in:   "Is it a good time to sell?",
			want: []string{BaseDisclaimer, BuySellDisclaimer},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Annotate(tt.in))
		})
	}
}

func TestAssessRisk(t *testing.T) {
	assert.Equal(t, RiskHigh, AssessRisk("Should I buy TSLA?"))
	assert.Equal(t, RiskHigh, AssessRisk("I'm going all in on crypto"))
	assert.Equal(t, RiskMedium, AssessRisk("How should I invest?"))
	assert.Equal(t, RiskLow, AssessRisk("What is AAPL's price?"))
	// high wins when both groups match
	assert.Equal(t, RiskHigh, AssessRisk("my retirement portfolio on margin"))
}

func TestRunProducesSilentOutput(t *testing.T) {
	out, disclaimers := Run("yolo into options")
	assert.Equal(t, models.RoleGuardian, out.Role)
	assert.Empty(t, out.Text)
	assert.Equal(t, "high", out.StructuredData["risk_level"])
	assert.Equal(t, BaseDisclaimer, disclaimers[0])
	assert.GreaterOrEqual(t, len(disclaimers), 1)
}
