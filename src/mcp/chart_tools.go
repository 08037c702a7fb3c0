package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finnie/src/helpers"
	"finnie/src/models"
	"finnie/src/utils"
)

// -----------------------------------------------------------------------------
// Chart tools: renderer-agnostic series specs built from finance data
// -----------------------------------------------------------------------------

// ChartTools reuses the finance tools' collaborators.
type ChartTools struct {
	Finance *FinanceTools
}

var chartDefinitions = []models.MToolDefinition{
	{
		Name:        "create_price_chart",
		Description: "Create a price chart (candlestick or line) for a stock ticker.",
		InputSchema: objectSchema([]string{"ticker"}, map[string]interface{}{
			"ticker":     stringProp("Stock ticker symbol", ""),
			"period":     stringProp("Time period: 1mo, 3mo, 6mo, 1y, 2y, 5y", "6mo"),
			"chart_type": stringProp("Chart type: candlestick or line", "line"),
		}),
	},
	{
		Name:        "create_comparison_chart",
		Description: "Create a normalized comparison chart for multiple tickers.",
		InputSchema: objectSchema([]string{"tickers"}, map[string]interface{}{
			"tickers": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "List of ticker symbols to compare",
			},
			"period": stringProp("Time period for comparison", "1y"),
		}),
	},
	{
		Name:        "create_sector_heatmap",
		Description: "Create a heatmap showing sector performance.",
		InputSchema: objectSchema(nil, map[string]interface{}{
			"period": stringProp("Time period", "1mo"),
		}),
	},
}

func (c *ChartTools) Register(r *ToolRegistry) {
	handlers := map[string]Handler{
		"create_price_chart":      c.CreatePriceChart,
		"create_comparison_chart": c.CreateComparisonChart,
		"create_sector_heatmap":   c.CreateSectorHeatmap,
	}
	for _, def := range chartDefinitions {
		r.Register(def, handlers[def.Name])
	}
}

// -----------------------------------------------------------------------------

func (c *ChartTools) CreatePriceChart(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	ticker, err := tickerArg(args)
	if err != nil {
		return nil, err
	}
	period := utils.NormalizePeriod(stringArg(args, "period", "6mo"))
	kind := strings.ToLower(stringArg(args, "chart_type", "line"))
	if kind != "candlestick" {
		kind = "line"
	}

	h, err := c.Finance.history(ctx, ticker, period)
	if errors.Is(err, helpers.ErrNotFound) {
		return notFound(ticker, "No historical data for '%s'"), nil
	}
	if err != nil {
		return nil, err
	}

	cols := HistoryColumns(h)
	series := map[string]interface{}{
		"name": ticker,
		"kind": kind,
		"x":    cols["dates"],
	}
	if kind == "candlestick" {
		series["open"] = cols["open"]
		series["high"] = cols["high"]
		series["low"] = cols["low"]
		series["close"] = cols["close"]
	} else {
		series["y"] = cols["close"]
	}

	return map[string]interface{}{
		"chart_type":  "series",
		"title":       fmt.Sprintf("%s %s Price Chart", ticker, period),
		"ticker":      ticker,
		"period":      period,
		"x_title":     "Date",
		"y_title":     "Price ($)",
		"series":      []map[string]interface{}{series},
		"data_points": cols["data_points"],
	}, nil
}

// -----------------------------------------------------------------------------

// CreateComparisonChart rebases each ticker's closes to 100. Tickers without
// data are skipped; at most eight are drawn.
func (c *ChartTools) CreateComparisonChart(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	requested := stringsArg(args, "tickers")
	if len(requested) == 0 {
		return nil, helpers.NewValidationError("tickers is required")
	}
	if len(requested) > utils.MaxComparisonTickers {
		requested = requested[:utils.MaxComparisonTickers]
	}
	period := utils.NormalizePeriod(stringArg(args, "period", "1y"))

	var (
		histories []*models.MHistory
		valid     []string
	)
	for _, raw := range requested {
		ticker, _ := utils.CorrectTicker(utils.NormalizeTicker(raw))
		h, err := c.Finance.history(ctx, ticker, period)
		if err != nil || h.Bars[0].Close == 0 {
			continue
		}
		h.Ticker = ticker
		histories = append(histories, h)
		valid = append(valid, ticker)
	}
	if len(valid) == 0 {
		return map[string]interface{}{"error": "No valid data found for any ticker"}, nil
	}

	series, corr := c.Finance.facade().ComparisonSeries(histories)
	for _, s := range series {
		s["kind"] = "line"
	}

	out := map[string]interface{}{
		"chart_type": "series",
		"title":      fmt.Sprintf("Performance Comparison %s (%s)", strings.Join(valid, ", "), period),
		"tickers":    valid,
		"period":     period,
		"x_title":    "Date",
		"y_title":    "Normalized Price (base = 100)",
		"baseline":   100,
		"series":     series,
	}
	if corr != nil {
		out["correlation"] = utils.Round(*corr, 4)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (c *ChartTools) CreateSectorHeatmap(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	perf, err := c.Finance.GetSectorPerformance(ctx, args)
	if err != nil {
		return nil, err
	}
	rows, _ := perf["sectors"].([]map[string]interface{})
	if len(rows) == 0 {
		return map[string]interface{}{"error": "Could not fetch sector data"}, nil
	}

	sectors := make([]string, len(rows))
	changes := make([]float64, len(rows))
	labels := make([]string, len(rows))
	colors := make([]string, len(rows))
	for i, row := range rows {
		sectors[i], _ = row["sector"].(string)
		changes[i], _ = row["change_percent"].(float64)
		labels[i] = utils.Signed(changes[i], 1) + "%"
		colors[i] = "positive"
		if changes[i] < 0 {
			colors[i] = "negative"
		}
	}

	return map[string]interface{}{
		"chart_type": "series",
		"title":      fmt.Sprintf("Sector Performance %s", perf["period"]),
		"period":     perf["period"],
		"x_title":    "Change (%)",
		"series": []map[string]interface{}{{
			"name":   "Sectors",
			"kind":   "bar",
			"x":      changes,
			"y":      sectors,
			"text":   labels,
			"colors": colors,
		}},
		"sectors": rows,
	}, nil
}
