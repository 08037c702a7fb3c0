package analysis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"finnie/src/analysis/core"
	"finnie/src/logger"
	"finnie/src/models"
)

// AnalysisFacade is the numeric toolbox the responders and the API share:
// projections, history summaries and comparison series.
type AnalysisFacade struct {
	Config *models.MConfig
	Logger *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config: cfg,
		Logger: log,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// -----------------------------------------------------------------------------

// WithRand replaces the random source so runs are reproducible.
func (a *AnalysisFacade) WithRand(rng *rand.Rand) *AnalysisFacade {
	a.mu.Lock()
	a.rng = rng
	a.mu.Unlock()
	return a
}

// -----------------------------------------------------------------------------

// Project runs the Monte Carlo projection with the configured trial count.
// It stops early with ctx's error.
func (a *AnalysisFacade) Project(ctx context.Context, params models.MProjectionParams) (models.MSimulationResult, error) {
	n := 1000
	if a.Config != nil && a.Config.Orchestrator.NumSimulations > 0 {
		n = a.Config.Orchestrator.NumSimulations
	}

	// rand.Rand is not safe for concurrent use
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	result, err := SimulateProjection(ctx, params, n, AnnualStd, a.rng)
	if a.Logger != nil {
		a.Logger.Debug("Projection of %d trials over %d years took %v", n, params.Years, time.Since(start))
	}
	return result, err
}

// -----------------------------------------------------------------------------

// SummarizeHistory returns the OHLCV candle of a history plus daily-return
// mean and standard deviation.
func (a *AnalysisFacade) SummarizeHistory(h *models.MHistory) map[string]interface{} {
	summary := map[string]interface{}{}
	for k, v := range core.ComputeOHLCV(h.Bars) {
		summary[k] = v
	}

	returns := core.DailyReturns(h.Closes())
	mean, std := core.CalculateMeanStd(returns)
	summary["return_mean"] = mean
	summary["return_std"] = std
	summary["bars"] = len(h.Bars)

	if len(h.Bars) > 0 {
		summary["change_percent"] = core.CalculateChangePercent(h.Bars[len(h.Bars)-1].Close, h.Bars[0].Close)
	}
	return summary
}

// -----------------------------------------------------------------------------

// ComparisonSeries rebases each history to 100 and, for exactly two tickers,
// reports the correlation of their daily returns.
func (a *AnalysisFacade) ComparisonSeries(histories []*models.MHistory) ([]map[string]interface{}, *float64) {
	series := make([]map[string]interface{}, 0, len(histories))
	for _, h := range histories {
		dates := make([]string, len(h.Bars))
		for i, b := range h.Bars {
			dates[i] = b.Date
		}
		series = append(series, map[string]interface{}{
			"name": h.Ticker,
			"x":    dates,
			"y":    core.Rebase(h.Closes()),
		})
	}

	if len(histories) != 2 {
		return series, nil
	}
	x := core.DailyReturns(histories[0].Closes())
	y := core.DailyReturns(histories[1].Closes())
	if len(x) != len(y) {
		n := len(x)
		if len(y) < n {
			n = len(y)
		}
		x, y = x[len(x)-n:], y[len(y)-n:]
	}
	corr := core.CalculateCorrelation(x, y)
	return series, &corr
}
