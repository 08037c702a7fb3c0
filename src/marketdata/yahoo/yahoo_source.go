package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/utils"

	"golang.org/x/sync/errgroup"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// YahooFinanceSource answers market-data questions from the v8 chart endpoint.
type YahooFinanceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	BaseURL string
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	base := cfg.MarketData.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &YahooFinanceSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
		BaseURL: strings.TrimRight(base, "/"),
	}
}

// -----------------------------------------------------------------------------

// GetQuote reads the latest price and the day's range from the chart meta.
func (s *YahooFinanceSource) GetQuote(ctx context.Context, ticker string) (*models.MQuote, error) {
	ticker = utils.NormalizeTicker(ticker)
	chart, err := s.fetchChart(ctx, ticker, "5d", "1d")
	if err != nil {
		return nil, err
	}

	meta := chart.Meta
	price := meta.RegularMarketPrice
	if price <= 0 {
		return nil, fmt.Errorf("no price for %s: %w", ticker, helpers.ErrNotFound)
	}

	// 1. Previous close: the bar before the last one, else the range anchor
	prevClose := meta.PreviousClose
	if prevClose <= 0 && len(chart.Bars) >= 2 {
		prevClose = chart.Bars[len(chart.Bars)-2].Close
	}
	if prevClose <= 0 {
		prevClose = meta.ChartPreviousClose
	}
	if prevClose <= 0 {
		prevClose = price
	}

	change := price - prevClose
	changePct := 0.0
	if prevClose > 0 {
		changePct = change / prevClose * 100
	}

	// 2. Day open from the last bar
	open := 0.0
	if len(chart.Bars) > 0 {
		open = chart.Bars[len(chart.Bars)-1].Open
	}

	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}
	if name == "" {
		name = ticker
	}

	return &models.MQuote{
		Ticker:           ticker,
		Name:             name,
		Price:            utils.Round(price, 2),
		Change:           utils.Round(change, 2),
		ChangePercent:    utils.Round(changePct, 2),
		PreviousClose:    utils.Round(prevClose, 2),
		Open:             utils.Round(open, 2),
		DayHigh:          utils.Round(meta.RegularMarketDayHigh, 2),
		DayLow:           utils.Round(meta.RegularMarketDayLow, 2),
		Volume:           meta.RegularMarketVolume,
		FiftyTwoWeekHigh: utils.Round(meta.FiftyTwoWeekHigh, 2),
		FiftyTwoWeekLow:  utils.Round(meta.FiftyTwoWeekLow, 2),
		Currency:         meta.Currency,
		Timestamp:        meta.RegularMarketTime,
	}, nil
}

// -----------------------------------------------------------------------------

// GetHistory returns daily bars. Unknown periods fall back to 1y.
func (s *YahooFinanceSource) GetHistory(ctx context.Context, ticker, period string) (*models.MHistory, error) {
	ticker = utils.NormalizeTicker(ticker)
	period = utils.NormalizePeriod(period)

	chart, err := s.fetchChart(ctx, ticker, period, "1d")
	if err != nil {
		return nil, err
	}
	if len(chart.Bars) == 0 {
		return nil, fmt.Errorf("no history for %s: %w", ticker, helpers.ErrNotFound)
	}
	return &models.MHistory{Ticker: ticker, Period: period, Bars: chart.Bars}, nil
}

// -----------------------------------------------------------------------------

// GetSectorPerformance fetches every sector fund concurrently and sorts them
// best first. Funds that fail or have fewer than two bars are skipped.
func (s *YahooFinanceSource) GetSectorPerformance(ctx context.Context, period string) ([]models.MSectorPerformance, error) {
	if period == "" {
		period = "1mo"
	}

	var mu sync.Mutex
	results := make([]models.MSectorPerformance, 0, len(utils.SectorETFs))

	g, gctx := errgroup.WithContext(ctx)
	limit := s.Config.Network.ConcurrentRequests
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for _, se := range utils.SectorETFs {
		g.Go(func() error {
			h, err := s.GetHistory(gctx, se.ETF, period)
			if err != nil {
				s.Logger.Debug("Sector %s (%s) skipped: %v", se.Sector, se.ETF, err)
				return nil
			}
			if len(h.Bars) < 2 {
				return nil
			}
			start, end := h.Bars[0].Close, h.Bars[len(h.Bars)-1].Close
			if start <= 0 {
				return nil
			}

			mu.Lock()
			results = append(results, models.MSectorPerformance{
				Sector:        se.Sector,
				ETF:           se.ETF,
				ChangePercent: utils.Round((end-start)/start*100, 2),
				StartPrice:    utils.Round(start, 2),
				EndPrice:      utils.Round(end, 2),
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.Logger.Info("YahooFinance: Fetched %d/%d sector funds", len(results), len(utils.SectorETFs))
	if len(results) == 0 {
		return nil, fmt.Errorf("all sector fetches failed")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ChangePercent > results[j].ChangePercent
	})
	return results, nil
}

// -----------------------------------------------------------------------------

// GetCompanyInfo carries what the chart meta knows: names and the exchange.
// Sector and industry come from the knowledge base.
func (s *YahooFinanceSource) GetCompanyInfo(ctx context.Context, ticker string) (*models.MCompanyInfo, error) {
	ticker = utils.NormalizeTicker(ticker)
	chart, err := s.fetchChart(ctx, ticker, "1d", "1d")
	if err != nil {
		return nil, err
	}

	name := chart.Meta.LongName
	if name == "" {
		name = chart.Meta.ShortName
	}
	if name == "" {
		return nil, fmt.Errorf("company info for %s: %w", ticker, helpers.ErrNotFound)
	}
	return &models.MCompanyInfo{
		Ticker: ticker,
		Name:   name,
	}, nil
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta       chartMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Currency             string  `json:"currency"`
	Symbol               string  `json:"symbol"`
	ExchangeName         string  `json:"exchangeName"`
	LongName             string  `json:"longName"`
	ShortName            string  `json:"shortName"`
	RegularMarketTime    int64   `json:"regularMarketTime"`
	Gmtoffset            int     `json:"gmtoffset"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	PreviousClose        float64 `json:"previousClose"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  int64   `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
}

type chart struct {
	Meta chartMeta
	Bars []models.MHistoryBar
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) fetchChart(ctx context.Context, ticker, rangeStr, interval string) (*chart, error) {
	params := map[string]string{
		"interval":       interval,
		"range":          rangeStr,
		"includePrePost": "false",
	}
	url := fmt.Sprintf("%s/v8/finance/chart/%s", s.BaseURL, ticker)

	respBytes, err := s.Network.Get(ctx, url, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", ticker, err)
	}
	return s.parseChartResponse(ticker, respBytes)
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) (*chart, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w", symbol, helpers.ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result for %s: %w", symbol, helpers.ErrNotFound)
	}

	result := resp.Chart.Result[0]
	out := &chart{Meta: result.Meta}
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return out, nil
	}

	quote := result.Indicators.Quote[0]

	// 1. Validation: every column must line up with the timestamps
	n := len(result.Timestamp)
	if n != len(quote.Close) || n != len(quote.Open) || n != len(quote.High) ||
		n != len(quote.Low) || n != len(quote.Volume) {
		s.Logger.Info("Data alignment error for %s: Mismatched array lengths", symbol)
		return nil, fmt.Errorf("data alignment error for %s", symbol)
	}

	// 2. Build bars, dropping rows with nulls or a non-positive close
	type point struct {
		ts  int64
		bar models.MHistoryBar
	}
	points := make([]point, 0, n)
	offset := time.Duration(result.Meta.Gmtoffset) * time.Second

	for i := 0; i < n; i++ {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		if *quote.Close[i] <= 0 || *quote.Volume[i] < 0 {
			s.Logger.Debug("Skipping invalid point for %s: close=%f, volume=%f", symbol, *quote.Close[i], *quote.Volume[i])
			continue
		}

		ts := result.Timestamp[i]
		points = append(points, point{ts: ts, bar: models.MHistoryBar{
			Date:   time.Unix(ts, 0).UTC().Add(offset).Format("2006-01-02"),
			Open:   utils.Round(*quote.Open[i], 2),
			High:   utils.Round(*quote.High[i], 2),
			Low:    utils.Round(*quote.Low[i], 2),
			Close:  utils.Round(*quote.Close[i], 2),
			Volume: *quote.Volume[i],
		}})
	}

	// 3. Sort by timestamp
	sort.Slice(points, func(i, j int) bool { return points[i].ts < points[j].ts })

	out.Bars = make([]models.MHistoryBar, len(points))
	for i, p := range points {
		out.Bars[i] = p.bar
	}

	if len(out.Bars) > 0 {
		s.Logger.Debug("Fetched %s: %d valid points [%s -> %s]", symbol, len(out.Bars), out.Bars[0].Date, out.Bars[len(out.Bars)-1].Date)
	}
	return out, nil
}
