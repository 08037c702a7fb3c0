package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"finnie/src/analysis"
	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeMarket serves canned data; unknown tickers are not found.
type fakeMarket struct {
	closes  map[string][]float64
	sectors []models.MSectorPerformance
	fail    error
	calls   []string
}

func (f *fakeMarket) GetQuote(ctx context.Context, ticker string) (*models.MQuote, error) {
	f.calls = append(f.calls, "quote:"+ticker)
	c, ok := f.closes[ticker]
	if !ok {
		return nil, helpers.ErrNotFound
	}
	last := c[len(c)-1]
	return &models.MQuote{Ticker: ticker, Name: ticker + " Inc.", Price: last, PreviousClose: c[len(c)-2], Change: last - c[len(c)-2]}, nil
}

func (f *fakeMarket) GetHistory(ctx context.Context, ticker, period string) (*models.MHistory, error) {
	f.calls = append(f.calls, "history:"+ticker+":"+period)
	if f.fail != nil {
		return nil, f.fail
	}
	c, ok := f.closes[ticker]
	if !ok {
		return nil, helpers.ErrNotFound
	}
	h := &models.MHistory{Ticker: ticker, Period: period}
	for i, v := range c {
		h.Bars = append(h.Bars, models.MHistoryBar{
			Date: fmt.Sprintf("2024-01-%02d", i+2), Open: v - 1, High: v + 1, Low: v - 2, Close: v, Volume: 1000,
		})
	}
	return h, nil
}

func (f *fakeMarket) GetSectorPerformance(ctx context.Context, period string) ([]models.MSectorPerformance, error) {
	f.calls = append(f.calls, "sectors:"+period)
	return f.sectors, f.fail
}

func (f *fakeMarket) GetCompanyInfo(ctx context.Context, ticker string) (*models.MCompanyInfo, error) {
	if _, ok := f.closes[ticker]; !ok {
		return nil, helpers.ErrNotFound
	}
	return &models.MCompanyInfo{Ticker: ticker, Name: ticker + " Inc.", Sector: "Technology"}, nil
}

func newTestRegistry(m *fakeMarket) *ToolRegistry {
	r := NewDefaultRegistry(m, analysis.NewAnalysisFacade(nil, nil), logger.NewLoggerFromZap(zap.NewNop(), "MCP"))
	r.Now = func() time.Time { return time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC) }
	return r
}

func sampleMarket() *fakeMarket {
	return &fakeMarket{
		closes: map[string][]float64{
			"AAPL": {100, 102, 101, 105},
			"MSFT": {200, 198, 204, 210},
		},
		sectors: []models.MSectorPerformance{
			{Sector: "Technology", ETF: "XLK", ChangePercent: 10},
			{Sector: "Healthcare", ETF: "XLV", ChangePercent: 2},
			{Sector: "Energy", ETF: "XLE", ChangePercent: -5},
		},
	}
}

// -----------------------------------------------------------------------------

func TestListToolsKeepsRegistrationOrder(t *testing.T) {
	r := newTestRegistry(sampleMarket())

	var names []string
	for _, def := range r.ListTools() {
		names = append(names, def.Name)
		assert.Equal(t, "object", def.InputSchema["type"])
	}
	assert.Equal(t, []string{
		"get_stock_price", "get_historical_data", "get_company_info", "get_sector_performance",
		"create_price_chart", "create_comparison_chart", "create_sector_heatmap",
	}, names)
	assert.Equal(t, 7, r.Count())
	assert.True(t, r.Has("create_sector_heatmap"))
}

func TestCallUnknownTool(t *testing.T) {
	r := newTestRegistry(sampleMarket())

	res := r.Call(context.Background(), "get_weather", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown tool: get_weather", res.Error)
	assert.Len(t, res.Available, 7)
	assert.Contains(t, res.Available, "get_stock_price")
}

func TestCallEnvelope(t *testing.T) {
	r := newTestRegistry(sampleMarket())

	res := r.Call(context.Background(), "get_stock_price", map[string]interface{}{"ticker": " $appl "})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "get_stock_price", res.Tool)
	assert.Equal(t, "2024-06-03T14:00:00Z", res.Timestamp)
	assert.Equal(t, "AAPL", res.Result["ticker"])
	assert.Equal(t, 105.0, res.Result["price"])
}

func TestCallReportsMissingTickerAndErrors(t *testing.T) {
	m := sampleMarket()
	r := newTestRegistry(m)

	// Validation failures become the error arm
	res := r.Call(context.Background(), "get_historical_data", map[string]interface{}{})
	assert.False(t, res.Success)
	assert.Equal(t, "ticker is required", res.Error)

	// An unknown ticker is a result carrying an error key
	res = r.Call(context.Background(), "get_stock_price", map[string]interface{}{"ticker": "ZZZZ"})
	assert.False(t, res.Success)
	assert.Equal(t, "Ticker 'ZZZZ' not found", res.Result["error"])

	// Collaborator failures are reported, not raised
	m.fail = errors.New("connection reset")
	res = r.Call(context.Background(), "get_sector_performance", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "connection reset", res.Error)
}

func TestCallRecoversPanics(t *testing.T) {
	r := newTestRegistry(sampleMarket())
	r.Register(models.MToolDefinition{Name: "boom"}, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		panic("bad state")
	})

	res := r.Call(context.Background(), "boom", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "bad state")
}

// -----------------------------------------------------------------------------

func TestHistoricalDataColumns(t *testing.T) {
	m := sampleMarket()
	r := newTestRegistry(m)

	res := r.Call(context.Background(), "get_historical_data", map[string]interface{}{"ticker": "AAPL", "period": "7w"})
	require.True(t, res.Success)
	assert.Equal(t, "1y", res.Result["period"])
	assert.Equal(t, 4, res.Result["data_points"])
	assert.Equal(t, []float64{100, 102, 101, 105}, res.Result["close"])
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}, res.Result["dates"])
	assert.Contains(t, res.Result, "summary")
	assert.Equal(t, []string{"history:AAPL:1y"}, m.calls)
}

func TestSectorPerformanceSummary(t *testing.T) {
	r := newTestRegistry(sampleMarket())

	res := r.Call(context.Background(), "get_sector_performance", nil)
	require.True(t, res.Success)
	assert.Equal(t, "1mo", res.Result["period"])
	assert.Equal(t, "Technology", res.Result["top_performer"])
	assert.Equal(t, "Energy", res.Result["worst_performer"])
}

// -----------------------------------------------------------------------------

func TestPriceChartKinds(t *testing.T) {
	r := newTestRegistry(sampleMarket())

	res := r.Call(context.Background(), "create_price_chart", map[string]interface{}{"ticker": "AAPL"})
	require.True(t, res.Success)
	assert.Equal(t, "series", res.Result["chart_type"])
	assert.Equal(t, "6mo", res.Result["period"])
	line := res.Result["series"].([]map[string]interface{})[0]
	assert.Equal(t, "line", line["kind"])
	assert.Equal(t, []float64{100, 102, 101, 105}, line["y"])

	res = r.Call(context.Background(), "create_price_chart", map[string]interface{}{"ticker": "MSFT", "chart_type": "Candlestick"})
	require.True(t, res.Success)
	candle := res.Result["series"].([]map[string]interface{})[0]
	assert.Equal(t, "candlestick", candle["kind"])
	assert.Equal(t, []float64{199, 197, 203, 209}, candle["open"])
	assert.NotContains(t, candle, "y")
}

func TestComparisonChartRebasesAndSkipsUnknown(t *testing.T) {
	r := newTestRegistry(sampleMarket())

	res := r.Call(context.Background(), "create_comparison_chart", map[string]interface{}{
		"tickers": []interface{}{"AAPL", "ZZZZ", "msft"},
	})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"AAPL", "MSFT"}, res.Result["tickers"])
	assert.Equal(t, 100, res.Result["baseline"])

	series := res.Result["series"].([]map[string]interface{})
	require.Len(t, series, 2)
	for _, s := range series {
		y := s["y"].([]float64)
		assert.InDelta(t, 100.0, y[0], 1e-9)
	}
	assert.InDelta(t, 105.0, series[0]["y"].([]float64)[3], 1e-9)
	assert.Contains(t, res.Result, "correlation")
}

func TestComparisonChartCapsTickers(t *testing.T) {
	m := sampleMarket()
	r := newTestRegistry(m)

	res := r.Call(context.Background(), "create_comparison_chart", map[string]interface{}{
		"tickers": "A,B,C,D,E,F,G,H,I,J",
	})
	assert.False(t, res.Success)
	assert.Equal(t, "No valid data found for any ticker", res.Result["error"])
	assert.Len(t, m.calls, 8)
}

func TestSectorHeatmap(t *testing.T) {
	r := newTestRegistry(sampleMarket())

	res := r.Call(context.Background(), "create_sector_heatmap", map[string]interface{}{"period": "3mo"})
	require.True(t, res.Success)
	bar := res.Result["series"].([]map[string]interface{})[0]
	assert.Equal(t, []string{"Technology", "Healthcare", "Energy"}, bar["y"])
	assert.Equal(t, []string{"+10.0%", "+2.0%", "-5.0%"}, bar["text"])
	assert.Equal(t, []string{"positive", "positive", "negative"}, bar["colors"])

	res = newTestRegistry(&fakeMarket{}).Call(context.Background(), "create_sector_heatmap", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Could not fetch sector data", res.Result["error"])
}
