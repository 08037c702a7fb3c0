package utils

import "regexp"

// -----------------------------------------------------------------------------

// DefaultWatchlist is what the trend responder ranks when no watchlist is configured.
var DefaultWatchlist = []string{"SPY", "QQQ", "AAPL", "MSFT", "NVDA", "TSLA", "AMZN", "META", "GOOGL"}

// MaxQuoteTickers caps how many tickers one market-data answer covers.
const MaxQuoteTickers = 5

// MaxComparisonTickers caps the comparison chart.
const MaxComparisonTickers = 8

// -----------------------------------------------------------------------------

// SectorETF pairs a sector with the SPDR fund that tracks it.
type SectorETF struct {
	Sector string
	ETF    string
}

// SectorETFs lists the 11 SPDR sector funds in display order.
var SectorETFs = []SectorETF{
	{"Technology", "XLK"},
	{"Healthcare", "XLV"},
	{"Financials", "XLF"},
	{"Consumer Discretionary", "XLY"},
	{"Consumer Staples", "XLP"},
	{"Energy", "XLE"},
	{"Utilities", "XLU"},
	{"Real Estate", "XLRE"},
	{"Materials", "XLB"},
	{"Industrials", "XLI"},
	{"Communication Services", "XLC"},
}

// ValidPeriods are the history ranges the chart endpoint accepts.
var ValidPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "max"}

// NormalizePeriod falls back to 1y for anything unknown.
func NormalizePeriod(period string) string {
	for _, p := range ValidPeriods {
		if p == period {
			return p
		}
	}
	return "1y"
}

// -----------------------------------------------------------------------------

// knownTickers is the whitelist bare uppercase words must hit to count as tickers.
var knownTickers = map[string]bool{}

func init() {
	for _, t := range []string{
		// Major indices & ETFs
		"SPY", "QQQ", "DIA", "IWM", "VTI", "VOO", "ARKK", "XLF", "XLE", "XLK",
		// Mega-cap tech
		"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "META", "NVDA", "TSLA",
		// Major companies
		"JPM", "JNJ", "UNH", "PG", "HD", "BAC", "WMT", "KO", "PEP", "MCD",
		"DIS", "NFLX", "PYPL", "SQ", "SHOP", "UBER", "LYFT", "SNAP", "PINS",
		"AMD", "INTC", "CRM", "ORCL", "IBM", "CSCO", "QCOM", "AVGO", "TXN",
		"BA", "GE", "CAT", "MMM", "GS", "MS", "C", "WFC", "V", "MA", "AXP",
		"PFE", "MRNA", "ABBV", "BMY", "LLY", "MRK", "AMGN", "GILD",
		"XOM", "CVX", "COP", "SLB", "OXY",
		"COST", "TGT", "LOW", "SBUX", "NKE", "LULU",
		"COIN", "HOOD", "PLTR", "SOFI", "RIVN", "LCID", "NIO",
		"F", "GM", "TM", "ABNB", "BKNG", "MAR",
		// Crypto-related
		"MSTR", "MARA", "RIOT",
	} {
		knownTickers[t] = true
	}
}

// IsKnownTicker reports whether a bare word is on the whitelist.
func IsKnownTicker(word string) bool {
	return knownTickers[word]
}

// tickerCorrections maps common typos and names typed as tickers.
var tickerCorrections = map[string]string{
	"APPL": "AAPL", "APLE": "AAPL", "APPLE": "AAPL",
	"GOGLE": "GOOGL", "GOOG": "GOOGL", "GOOGLE": "GOOGL",
	"MICROSOFT": "MSFT",
	"AMAZN": "AMZN", "AMAZON": "AMZN",
	"TESLA": "TSLA",
	"FB": "META", "FACEBOOK": "META",
	"NVIDIA": "NVDA",
	"BRKB": "BRK-B", "BRKA": "BRK-A",
	"BERKSHIRE": "BRK-B",
}

// companyToTicker is checked in this order when a message names companies.
var companyToTicker = []struct {
	Company string
	Ticker  string
}{
	{"google", "GOOGL"}, {"apple", "AAPL"}, {"microsoft", "MSFT"},
	{"amazon", "AMZN"}, {"tesla", "TSLA"}, {"nvidia", "NVDA"},
	{"meta", "META"}, {"facebook", "META"}, {"netflix", "NFLX"},
	{"disney", "DIS"}, {"berkshire", "BRK-B"}, {"coinbase", "COIN"},
	{"paypal", "PYPL"}, {"shopify", "SHOP"}, {"uber", "UBER"},
	{"palantir", "PLTR"}, {"amd", "AMD"}, {"intel", "INTC"},
	{"starbucks", "SBUX"}, {"nike", "NKE"}, {"walmart", "WMT"},
	{"costco", "COST"}, {"boeing", "BA"},
}

// companyPatterns holds one whole-word matcher per companyToTicker entry, so
// "intelligence" does not name Intel.
var companyPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(companyToTicker))
	for i, c := range companyToTicker {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(c.Company) + `\b`)
	}
	return out
}()
