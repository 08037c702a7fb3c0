package analysis

import (
	"context"
	"math/rand"
	"testing"

	"finnie/src/analysis/core"
	"finnie/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectionParams(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    models.MProjectionParams
		matched bool
	}{
		{
			name:    "all fields",
			in:      "If I invest $10,000 initially and add $500 monthly for 10 years",
			want:    models.MProjectionParams{Initial: 10000, Monthly: 500, Years: 10, ReturnRate: 0.08},
			matched: true,
		},
		{
			name:    "years only keeps defaults",
			in:      "what happens over 20 yrs",
			want:    models.MProjectionParams{Initial: 10000, Monthly: 500, Years: 20, ReturnRate: 0.08},
			matched: true,
		},
		{
			name:    "start keyword",
			in:      "$2,500 start and $100 per month",
			want:    models.MProjectionParams{Initial: 2500, Monthly: 100, Years: 5, ReturnRate: 0.08},
			matched: true,
		},
		{
			name:    "nothing supplied",
			in:      "how will my money grow",
			want:    models.MProjectionParams{Initial: 10000, Monthly: 500, Years: 5, ReturnRate: 0.08},
			matched: false,
		},
		{
			name:    "horizon is capped",
			in:      "invest $1000 initially for 999999 years",
			want:    models.MProjectionParams{Initial: 1000, Monthly: 500, Years: MaxYears, ReturnRate: 0.08},
			matched: true,
		},
		{
			name:    "overflowing horizon is capped",
			in:      "add $100 monthly for 99999999999999999999999 years",
			want:    models.MProjectionParams{Initial: 10000, Monthly: 100, Years: MaxYears, ReturnRate: 0.08},
			matched: true,
		},
		{
			name:    "bare comma is not an amount",
			in:      "well, invest wisely",
			want:    models.MProjectionParams{Initial: 10000, Monthly: 500, Years: 5, ReturnRate: 0.08},
			matched: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseProjectionParams(tt.in)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimulateProjectionOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for years := 1; years <= 30; years += 7 {
		for _, n := range []int{2, 10, 1000} {
			p := models.MProjectionParams{Initial: 10000, Monthly: 500, Years: years, ReturnRate: AnnualReturn}
			r, err := SimulateProjection(context.Background(), p, n, AnnualStd, rng)
			require.NoError(t, err)

			assert.LessOrEqual(t, r.Conservative, r.Expected)
			assert.LessOrEqual(t, r.Expected, r.Optimistic)
			assert.Equal(t, 10000+500*float64(years*12), r.TotalContributions)
		}
	}
}

func TestSimulateProjectionZeroYears(t *testing.T) {
	p := models.MProjectionParams{Initial: 2500, Monthly: 100, Years: 0, ReturnRate: AnnualReturn}
	r, _ := SimulateProjection(context.Background(), p, 100, AnnualStd, rand.New(rand.NewSource(1)))

	assert.Equal(t, 2500.0, r.Conservative)
	assert.Equal(t, 2500.0, r.Expected)
	assert.Equal(t, 2500.0, r.Optimistic)
	assert.Equal(t, 2500.0, r.TotalContributions)
	assert.Equal(t, 0.0, r.GrowthExpected)
}

func TestSimulateProjectionZeroContributions(t *testing.T) {
	p := models.MProjectionParams{Initial: 0, Monthly: 0, Years: 3, ReturnRate: AnnualReturn}
	r, _ := SimulateProjection(context.Background(), p, 50, AnnualStd, rand.New(rand.NewSource(1)))

	assert.Equal(t, 0.0, r.TotalContributions)
	assert.Equal(t, 0.0, r.GrowthConservative)
	assert.Equal(t, 0.0, r.GrowthOptimistic)
}

func TestSimulateProjectionIsDeterministicForSeed(t *testing.T) {
	p := models.MProjectionParams{Initial: 10000, Monthly: 500, Years: 10, ReturnRate: AnnualReturn}
	a, errA := SimulateProjection(context.Background(), p, 500, AnnualStd, rand.New(rand.NewSource(99)))
	b, errB := SimulateProjection(context.Background(), p, 500, AnnualStd, rand.New(rand.NewSource(99)))
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestSimulateProjectionStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := models.MProjectionParams{Initial: 10000, Monthly: 500, Years: MaxYears, ReturnRate: AnnualReturn}
	_, err := SimulateProjection(ctx, p, 1000, AnnualStd, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, context.Canceled)

	f := NewAnalysisFacade(nil, nil)
	_, err = f.Project(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFacadeUsesConfiguredTrials(t *testing.T) {
	cfg := &models.MConfig{}
	cfg.Orchestrator.NumSimulations = 3
	f := NewAnalysisFacade(cfg, nil).WithRand(rand.New(rand.NewSource(5)))

	r, err := f.Project(context.Background(), models.MProjectionParams{Initial: 1000, Monthly: 10, Years: 1, ReturnRate: AnnualReturn})
	require.NoError(t, err)
	assert.Equal(t, 1120.0, r.TotalContributions)
	assert.LessOrEqual(t, r.Conservative, r.Optimistic)
}

func TestSummarizeHistory(t *testing.T) {
	h := &models.MHistory{Ticker: "AAPL", Bars: []models.MHistoryBar{
		{Date: "2024-01-02", Open: 100, High: 105, Low: 99, Close: 104, Volume: 10},
		{Date: "2024-01-03", Open: 104, High: 110, Low: 101, Close: 108, Volume: 20},
		{Date: "2024-01-04", Open: 108, High: 109, Low: 95, Close: 97, Volume: 30},
	}}

	s := NewAnalysisFacade(&models.MConfig{}, nil).SummarizeHistory(h)
	assert.Equal(t, 100.0, s["open"])
	assert.Equal(t, 110.0, s["high"])
	assert.Equal(t, 95.0, s["low"])
	assert.Equal(t, 97.0, s["close"])
	assert.Equal(t, 60.0, s["volume"])
	assert.InDelta(t, 103.0, s["avg_price"], 1e-9)
	assert.Equal(t, 3, s["bars"])
	assert.InDelta(t, (97.0-104.0)/104.0*100, s["change_percent"], 1e-9)
}

func TestComparisonSeries(t *testing.T) {
	a := &models.MHistory{Ticker: "AAPL", Bars: []models.MHistoryBar{{Close: 50}, {Close: 55}, {Close: 60}}}
	b := &models.MHistory{Ticker: "MSFT", Bars: []models.MHistoryBar{{Close: 200}, {Close: 220}, {Close: 240}}}

	series, corr := NewAnalysisFacade(&models.MConfig{}, nil).ComparisonSeries([]*models.MHistory{a, b})
	require.Len(t, series, 2)
	assert.InDeltaSlice(t, []float64{100, 110, 120}, series[0]["y"], 1e-9)
	require.NotNil(t, corr)
	assert.InDelta(t, 1.0, *corr, 1e-9)
}

func TestPercentiles(t *testing.T) {
	got := core.Percentiles([]float64{5, 1, 4, 2, 3, 9, 8, 7, 6, 10}, 0.1, 0.5, 0.9, 1.0)
	assert.Equal(t, []float64{2, 6, 10, 10}, got)
	assert.Equal(t, 0.0, core.PercentileSorted(nil, 0.5))
}
