package models

// MQuote is the market-data service answer for one ticker.
type MQuote struct {
	Ticker           string   `json:"ticker"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Change           float64  `json:"change"`
	ChangePercent    float64  `json:"change_percent"`
	PreviousClose    float64  `json:"previous_close"`
	Open             float64  `json:"open"`
	DayHigh          float64  `json:"day_high"`
	DayLow           float64  `json:"day_low"`
	Volume           int64    `json:"volume"`
	MarketCap        int64    `json:"market_cap"`
	PERatio          *float64 `json:"pe_ratio"`
	EPS              *float64 `json:"eps"`
	DividendYield    *float64 `json:"dividend_yield"`
	FiftyTwoWeekHigh float64  `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64  `json:"fifty_two_week_low"`
	Sector           string   `json:"sector,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	Timestamp        int64    `json:"timestamp"`
}

// MHistoryBar is one OHLCV row.
type MHistoryBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type MHistory struct {
	Ticker string        `json:"ticker"`
	Period string        `json:"period"`
	Bars   []MHistoryBar `json:"bars"`
}

// Closes returns the close column.
func (h *MHistory) Closes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Close
	}
	return out
}

type MSectorPerformance struct {
	Sector        string  `json:"sector"`
	ETF           string  `json:"etf"`
	ChangePercent float64 `json:"change_percent"`
	StartPrice    float64 `json:"start_price"`
	EndPrice      float64 `json:"end_price"`
}

type MCompanyInfo struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	Country     string  `json:"country,omitempty"`
	Description string  `json:"description,omitempty"`
	MarketCap   int64   `json:"market_cap,omitempty"`
	PERatio     float64 `json:"pe_ratio,omitempty"`
}

// MMover is one watchlist entry ranked by the scout.
type MMover struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}
