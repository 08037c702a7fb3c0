package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finnie/src/analysis"
	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/models"
	"finnie/src/utils"
)

// -----------------------------------------------------------------------------
// Finance tools: thin wrappers over the market-data service
// -----------------------------------------------------------------------------

type FinanceTools struct {
	Market   interfaces.IMarketData
	Analysis *analysis.AnalysisFacade
}

var financeDefinitions = []models.MToolDefinition{
	{
		Name:        "get_stock_price",
		Description: "Get current stock price, daily change, and basic market metrics for a ticker.",
		InputSchema: objectSchema([]string{"ticker"}, map[string]interface{}{
			"ticker": stringProp("Stock ticker symbol (e.g., AAPL, MSFT, TSLA)", ""),
		}),
	},
	{
		Name:        "get_historical_data",
		Description: "Get historical OHLCV price data for charting and analysis.",
		InputSchema: objectSchema([]string{"ticker"}, map[string]interface{}{
			"ticker": stringProp("Stock ticker symbol", ""),
			"period": stringProp("Time period: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max", "1y"),
		}),
	},
	{
		Name:        "get_company_info",
		Description: "Get company information including sector, industry and key financials.",
		InputSchema: objectSchema([]string{"ticker"}, map[string]interface{}{
			"ticker": stringProp("Stock ticker symbol", ""),
		}),
	},
	{
		Name:        "get_sector_performance",
		Description: "Get performance data for major market sectors using sector ETFs.",
		InputSchema: objectSchema(nil, map[string]interface{}{
			"period": stringProp("Time period for performance calculation: 1d, 5d, 1mo, 3mo, 6mo, 1y", "1mo"),
		}),
	},
}

// Register adds the finance tools to r.
func (f *FinanceTools) Register(r *ToolRegistry) {
	handlers := map[string]Handler{
		"get_stock_price":        f.GetStockPrice,
		"get_historical_data":    f.GetHistoricalData,
		"get_company_info":       f.GetCompanyInfo,
		"get_sector_performance": f.GetSectorPerformance,
	}
	for _, def := range financeDefinitions {
		r.Register(def, handlers[def.Name])
	}
}

// -----------------------------------------------------------------------------

func (f *FinanceTools) GetStockPrice(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	ticker, err := tickerArg(args)
	if err != nil {
		return nil, err
	}
	if f.Market == nil {
		return nil, helpers.Unavailable("market data", errors.New("not configured"))
	}

	q, err := f.Market.GetQuote(ctx, ticker)
	if errors.Is(err, helpers.ErrNotFound) {
		return notFound(ticker, "Ticker '%s' not found"), nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"ticker":         q.Ticker,
		"name":           q.Name,
		"price":          q.Price,
		"previous_close": q.PreviousClose,
		"change":         q.Change,
		"change_percent": q.ChangePercent,
		"open":           q.Open,
		"day_high":       q.DayHigh,
		"day_low":        q.DayLow,
		"volume":         q.Volume,
		"market_cap":     q.MarketCap,
		"pe_ratio":       q.PERatio,
		"dividend_yield": q.DividendYield,
		"52_week_high":   q.FiftyTwoWeekHigh,
		"52_week_low":    q.FiftyTwoWeekLow,
		"currency":       q.Currency,
	}, nil
}

// -----------------------------------------------------------------------------

func (f *FinanceTools) GetHistoricalData(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	ticker, err := tickerArg(args)
	if err != nil {
		return nil, err
	}
	period := utils.NormalizePeriod(stringArg(args, "period", "1y"))

	h, err := f.history(ctx, ticker, period)
	if errors.Is(err, helpers.ErrNotFound) {
		return notFound(ticker, "No historical data for '%s'"), nil
	}
	if err != nil {
		return nil, err
	}

	out := HistoryColumns(h)
	out["ticker"] = ticker
	out["period"] = period
	if f.Analysis != nil {
		out["summary"] = f.Analysis.SummarizeHistory(h)
	}
	return out, nil
}

func (f *FinanceTools) history(ctx context.Context, ticker, period string) (*models.MHistory, error) {
	if f.Market == nil {
		return nil, helpers.Unavailable("market data", errors.New("not configured"))
	}
	h, err := f.Market.GetHistory(ctx, ticker, period)
	if err != nil {
		return nil, err
	}
	if len(h.Bars) == 0 {
		return nil, helpers.ErrNotFound
	}
	return h, nil
}

func (f *FinanceTools) facade() *analysis.AnalysisFacade {
	if f.Analysis == nil {
		return analysis.NewAnalysisFacade(nil, nil)
	}
	return f.Analysis
}

// HistoryColumns lays bars out as parallel arrays, prices rounded to cents.
func HistoryColumns(h *models.MHistory) map[string]interface{} {
	n := len(h.Bars)
	dates := make([]string, n)
	open, high, low, closes, volume := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, b := range h.Bars {
		dates[i] = b.Date
		open[i] = utils.Round(b.Open, 2)
		high[i] = utils.Round(b.High, 2)
		low[i] = utils.Round(b.Low, 2)
		closes[i] = utils.Round(b.Close, 2)
		volume[i] = b.Volume
	}
	return map[string]interface{}{
		"data_points": n,
		"dates":       dates,
		"open":        open,
		"high":        high,
		"low":         low,
		"close":       closes,
		"volume":      volume,
	}
}

// -----------------------------------------------------------------------------

func (f *FinanceTools) GetCompanyInfo(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	ticker, err := tickerArg(args)
	if err != nil {
		return nil, err
	}
	if f.Market == nil {
		return nil, helpers.Unavailable("market data", errors.New("not configured"))
	}

	info, err := f.Market.GetCompanyInfo(ctx, ticker)
	if errors.Is(err, helpers.ErrNotFound) {
		return notFound(ticker, "Company info not found for '%s'"), nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"ticker":      info.Ticker,
		"name":        info.Name,
		"sector":      orNA(info.Sector),
		"industry":    orNA(info.Industry),
		"country":     orNA(info.Country),
		"description": truncate(info.Description, 500),
		"market_cap":  info.MarketCap,
		"pe_ratio":    info.PERatio,
	}, nil
}

// -----------------------------------------------------------------------------

func (f *FinanceTools) GetSectorPerformance(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	period := utils.NormalizePeriod(stringArg(args, "period", "1mo"))
	if f.Market == nil {
		return nil, helpers.Unavailable("market data", errors.New("not configured"))
	}

	perf, err := f.Market.GetSectorPerformance(ctx, period)
	if err != nil {
		return nil, err
	}
	return SectorSummary(period, perf), nil
}

// SectorSummary reports sector rows (best first) with the top and worst names.
func SectorSummary(period string, perf []models.MSectorPerformance) map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(perf))
	for _, p := range perf {
		rows = append(rows, map[string]interface{}{
			"sector":         p.Sector,
			"etf":            p.ETF,
			"change_percent": p.ChangePercent,
			"start_price":    p.StartPrice,
			"end_price":      p.EndPrice,
		})
	}

	out := map[string]interface{}{
		"period":          period,
		"sectors":         rows,
		"top_performer":   nil,
		"worst_performer": nil,
	}
	if len(perf) > 0 {
		out["top_performer"] = perf[0].Sector
		out["worst_performer"] = perf[len(perf)-1].Sector
	}
	return out
}

// -----------------------------------------------------------------------------
// Argument helpers
// -----------------------------------------------------------------------------

func objectSchema(required []string, props map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description, def string) map[string]interface{} {
	p := map[string]interface{}{"type": "string", "description": description}
	if def != "" {
		p["default"] = def
	}
	return p
}

func stringArg(args map[string]interface{}, key, def string) string {
	if s, ok := args[key].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return def
}

// stringsArg accepts a JSON array or a comma separated string.
func stringsArg(args map[string]interface{}, key string) []string {
	var raw []string
	switch v := args[key].(type) {
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(v, ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// tickerArg normalizes the ticker argument and applies known typo fixes.
func tickerArg(args map[string]interface{}) (string, error) {
	raw := stringArg(args, "ticker", "")
	if raw == "" {
		return "", helpers.NewValidationError("ticker is required")
	}
	ticker, _ := utils.CorrectTicker(utils.NormalizeTicker(raw))
	return ticker, nil
}

func notFound(ticker, format string) map[string]interface{} {
	return map[string]interface{}{
		"error":  fmt.Sprintf(format, ticker),
		"ticker": ticker,
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
