package orchestration

import (
	"regexp"
	"strings"

	"finnie/src/models"
)

type patternGroup struct {
	intent     models.Intent
	confidence float64
	patterns   []*regexp.Regexp
}

func group(intent models.Intent, confidence float64, patterns ...string) patternGroup {
	g := patternGroup{intent: intent, confidence: confidence}
	for _, p := range patterns {
		g.patterns = append(g.patterns, regexp.MustCompile(`(?i)`+p))
	}
	return g
}

// Checked top to bottom; the first group with any match wins.
var intentGroups = []patternGroup{
	group(models.IntentMarketData, 0.95, `\bprice\b`, `\bquote\b`, `\btrading at\b`, `\$[A-Z]+`),
	group(models.IntentEducation, 0.90, `\bwhat is\b`, `\bexplain\b`, `\bhow does\b`, `\bwhy\b`),
	group(models.IntentNews, 0.90, `\bnews\b`, `\bheadlines\b`, `\bsentiment\b`),
	group(models.IntentPortfolio, 0.90, `\bportfolio\b`, `\bholdings\b`, `\ballocation\b`, `\brebalance\b`),
	group(models.IntentProjection, 0.85, `\bproject\b`, `\bif i invest\b`, `\bgrow\b`, `\bfuture\b`),
	group(models.IntentTrend, 0.85, `\btrending\b`, `\bhot\b`, `\bpopular\b`, `\bmovers\b`),
	group(models.IntentComparison, 0.90, `\bcompare\b`, `\bvs\b`, `\bversus\b`, `\bbetter\b`),
}

// GeneralConfidence is reported when nothing matched.
const GeneralConfidence = 0.70

// -----------------------------------------------------------------------------

// Classify maps raw user text to one intent and a confidence. It is total:
// text that matches no group is General.
func Classify(text string) (models.Intent, float64) {
	lower := strings.ToLower(text)
	for _, g := range intentGroups {
		for _, re := range g.patterns {
			if re.MatchString(lower) {
				return g.intent, g.confidence
			}
		}
	}
	return models.IntentGeneral, GeneralConfidence
}
