package compliance

import (
	"regexp"
	"strings"

	"finnie/src/models"
)

// Disclaimer texts, in the order they are emitted.
const (
	BaseDisclaimer     = "This is for educational purposes only, not financial advice."
	HighRiskDisclaimer = "This topic involves significant financial risk. Please consult a licensed financial advisor before making any decisions."
	OptionsDisclaimer  = "Options and derivatives carry substantial risk and are not suitable for all investors."
	CryptoDisclaimer   = "Cryptocurrency investments are highly volatile and speculative."
	BuySellDisclaimer  = "I cannot provide specific buy/sell recommendations. Consider consulting a registered investment advisor."
)

// RiskLevel grades a user message.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var (
	highRiskPatterns = compile(
		`\bshould i buy\b`,
		`\bshould i sell\b`,
		`\ball in\b`,
		`\byolo\b`,
		`\bguaranteed\b`,
		`\bget rich\b`,
		`\bquick money\b`,
		`\bmargin\b`,
		`\bleverage\b`,
		`\bshort\b`,
		`\boptions?\b`,
		`\bput\b.*\bcall\b`,
		`\bcrypto\b`,
		`\bbitcoin\b`,
		`\bethereum\b`,
	)

	mediumRiskPatterns = compile(
		`\binvest\b`,
		`\bportfolio\b`,
		`\bretirement\b`,
		`\bsavings\b`,
		`\bstrategy\b`,
	)

	optionsPatterns = compile(`\boptions?\b`, `\bputs?\b`, `\bcalls?\b`, `\bderivatives?\b`, `\bfutures?\b`, `\bswaps?\b`)

	cryptoPatterns = compile(`\bcrypto\b`, `\bbitcoin\b`, `\bbtc\b`, `\bethereum\b`, `\beth\b`, `\bsolana\b`, `\bdogecoin\b`, `\bnft\b`)

	buySellPatterns = compile(`should i (buy|sell)`, `(buy|sell) now`, `is it (a )?good time to (buy|sell)`)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// AssessRisk grades the text; high-risk patterns are checked before medium ones.
func AssessRisk(text string) RiskLevel {
	text = strings.ToLower(text)
	if anyMatch(highRiskPatterns, text) {
		return RiskHigh
	}
	if anyMatch(mediumRiskPatterns, text) {
		return RiskMedium
	}
	return RiskLow
}

// -----------------------------------------------------------------------------

// Annotate returns the disclaimers for a raw user message. The base disclaimer
// is always first; the topic checks fire independently of the risk level.
func Annotate(rawText string) []string {
	text := strings.ToLower(rawText)

	disclaimers := []string{BaseDisclaimer}

	if AssessRisk(text) == RiskHigh {
		disclaimers = append(disclaimers, HighRiskDisclaimer)
	}
	if anyMatch(optionsPatterns, text) {
		disclaimers = append(disclaimers, OptionsDisclaimer)
	}
	if anyMatch(cryptoPatterns, text) {
		disclaimers = append(disclaimers, CryptoDisclaimer)
	}
	if anyMatch(buySellPatterns, text) {
		disclaimers = append(disclaimers, BuySellDisclaimer)
	}

	return disclaimers
}

// -----------------------------------------------------------------------------

// Run is the compliance stage of a turn. It produces no visible text.
func Run(rawText string) (models.MResponderOutput, []string) {
	out := models.MResponderOutput{
		Role:           models.RoleGuardian,
		StructuredData: map[string]interface{}{"risk_level": string(AssessRisk(rawText))},
	}
	return out, Annotate(rawText)
}
