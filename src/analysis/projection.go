package analysis

import (
	"context"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"finnie/src/analysis/core"
	"finnie/src/models"
)

// Assumptions used by every projection.
const (
	AnnualReturn = 0.08
	AnnualStd    = 0.18

	DefaultInitial = 10000
	DefaultMonthly = 500
	DefaultYears   = 5

	// MaxYears bounds the horizon; longer requests are simulated at the cap.
	MaxYears = 100
)

var (
	initialRe = regexp.MustCompile(`(?i)\$?([\d,]+)\s*(initial|start|invest)`)
	monthlyRe = regexp.MustCompile(`(?i)\$?([\d,]+)\s*(month|per month|monthly)`)
	yearsRe   = regexp.MustCompile(`(?i)(\d+)\s*(year|yr)`)
)

// -----------------------------------------------------------------------------

// ParseProjectionParams reads "$N initial", "$N monthly" and "N years" from
// free text. Missing fields take the defaults; ok is true only when at least
// one field was actually present. Years are clamped to MaxYears.
func ParseProjectionParams(text string) (models.MProjectionParams, bool) {
	params := models.MProjectionParams{
		Initial:    DefaultInitial,
		Monthly:    DefaultMonthly,
		Years:      DefaultYears,
		ReturnRate: AnnualReturn,
	}
	matched := false

	if v, ok := matchAmount(initialRe, text); ok {
		params.Initial = v
		matched = true
	}
	if v, ok := matchAmount(monthlyRe, text); ok {
		params.Monthly = v
		matched = true
	}
	if m := yearsRe.FindStringSubmatch(text); m != nil {
		years, err := strconv.Atoi(m[1])
		if err != nil || years > MaxYears {
			// also covers digit runs too long for an int
			years = MaxYears
		}
		params.Years = years
		matched = true
	}

	return params, matched
}

// A capture of only commas is not a number and counts as no match.
func matchAmount(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// -----------------------------------------------------------------------------

// SimulateProjection runs the Monte Carlo projection.
//
// Each trial compounds years*12 monthly Gaussian returns (mean r/12, std s/sqrt(12))
// onto the running value and then adds the contribution. End values are sorted
// and the 10th/50th/90th percentiles are read at int(n*q). ctx is checked
// between trials.
func SimulateProjection(ctx context.Context, params models.MProjectionParams, numSimulations int, annualStd float64, rng *rand.Rand) (models.MSimulationResult, error) {
	if numSimulations < 1 {
		numSimulations = 1
	}

	annualReturn := params.ReturnRate
	monthlyReturn := annualReturn / 12
	monthlyStd := annualStd / math.Sqrt(12)

	months := params.Years * 12
	if months < 0 {
		months = 0
	}
	totalContributions := params.Initial + params.Monthly*float64(months)

	finalValues := make([]float64, numSimulations)
	for i := 0; i < numSimulations; i++ {
		if err := ctx.Err(); err != nil {
			return models.MSimulationResult{}, err
		}
		value := params.Initial
		for m := 0; m < months; m++ {
			sample := monthlyReturn + monthlyStd*rng.NormFloat64()
			value = value*(1+sample) + params.Monthly
		}
		finalValues[i] = value
	}
	sort.Float64s(finalValues)

	result := models.MSimulationResult{
		Conservative:       core.PercentileSorted(finalValues, 0.10),
		Expected:           core.PercentileSorted(finalValues, 0.50),
		Optimistic:         core.PercentileSorted(finalValues, 0.90),
		TotalContributions: totalContributions,
	}
	result.GrowthConservative = growth(result.Conservative, totalContributions)
	result.GrowthExpected = growth(result.Expected, totalContributions)
	result.GrowthOptimistic = growth(result.Optimistic, totalContributions)
	return result, nil
}

func growth(value, contributions float64) float64 {
	if contributions == 0 {
		return 0
	}
	return (value/contributions - 1) * 100
}
