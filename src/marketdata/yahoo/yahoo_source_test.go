package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const aaplChart = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL","shortName":"Apple Inc.","longName":"Apple Inc.",
    "regularMarketPrice":190.0,"chartPreviousClose":180.0,"regularMarketDayHigh":191.5,
    "regularMarketDayLow":187.25,"regularMarketVolume":5500000,"fiftyTwoWeekHigh":199.62,
    "fiftyTwoWeekLow":164.08,"regularMarketTime":1700000000,"gmtoffset":-18000},
  "timestamp":[1699885800,1699972200,1700058600],
  "indicators":{"quote":[{
    "open":[182.0,184.0,189.0],
    "high":[185.0,186.0,191.5],
    "low":[181.0,183.0,187.25],
    "close":[184.0,185.0,190.0],
    "volume":[1000,null,3000]
  }]}
}],"error":null}}`

const notFoundChart = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func testSource(baseURL string) *YahooFinanceSource {
	cfg := &models.MConfig{}
	cfg.Network.RequestTimeout = 5
	cfg.Network.ConcurrentRequests = 3
	cfg.MarketData.BaseURL = baseURL
	log := logger.NewLoggerFromZap(zap.NewNop(), "Yahoo")
	return NewYahooFinanceSource(cfg, network.NewAsyncNetworkManager(cfg, log), log)
}

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BRK-B", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(aaplChart))
	}))
	defer srv.Close()

	q, err := testSource(srv.URL).GetQuote(context.Background(), " brk.b ")
	require.NoError(t, err)

	assert.Equal(t, "BRK-B", q.Ticker)
	assert.Equal(t, "Apple Inc.", q.Name)
	assert.Equal(t, 190.0, q.Price)
	// the null-volume row is dropped, so the previous bar closed at 184
	assert.Equal(t, 184.0, q.PreviousClose)
	assert.Equal(t, 6.0, q.Change)
	assert.Equal(t, 3.26, q.ChangePercent)
	assert.Equal(t, 189.0, q.Open)
	assert.Equal(t, int64(5500000), q.Volume)
	assert.Equal(t, 199.62, q.FiftyTwoWeekHigh)
}

func TestGetHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(aaplChart))
	}))
	defer srv.Close()

	h, err := testSource(srv.URL).GetHistory(context.Background(), "AAPL", "7y")
	require.NoError(t, err)

	assert.Equal(t, "1y", h.Period)
	require.Len(t, h.Bars, 2)
	assert.Equal(t, models.MHistoryBar{Date: "2023-11-13", Open: 182, High: 185, Low: 181, Close: 184, Volume: 1000}, h.Bars[0])
	assert.Equal(t, "2023-11-15", h.Bars[1].Date)
}

func TestUnknownTickerIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(notFoundChart))
	}))
	defer srv.Close()

	_, err := testSource(srv.URL).GetQuote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, helpers.ErrNotFound)

	srv404 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundChart))
	}))
	defer srv404.Close()

	_, err = testSource(srv404.URL).GetHistory(context.Background(), "ZZZZ", "1mo")
	assert.ErrorIs(t, err, helpers.ErrNotFound)
}

func TestMisalignedChartIsRejected(t *testing.T) {
	src := testSource("http://unused")
	_, err := src.parseChartResponse("AAPL", []byte(`{"chart":{"result":[{"meta":{},"timestamp":[1,2],
		"indicators":{"quote":[{"open":[1],"high":[1,2],"low":[1,2],"close":[1,2],"volume":[1,2]}]}}]}}`))
	assert.Error(t, err)
}

func TestGetSectorPerformance(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		etf := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		switch etf {
		case "XLK":
			_, _ = fmt.Fprint(w, chartWithCloses(100, 110))
		case "XLE":
			_, _ = fmt.Fprint(w, chartWithCloses(100, 95))
		case "XLV":
			_, _ = fmt.Fprint(w, chartWithCloses(50, 51))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	sectors, err := testSource(srv.URL).GetSectorPerformance(context.Background(), "1mo")
	require.NoError(t, err)

	require.Len(t, sectors, 3)
	assert.Equal(t, "Technology", sectors[0].Sector)
	assert.Equal(t, 10.0, sectors[0].ChangePercent)
	assert.Equal(t, "Healthcare", sectors[1].Sector)
	assert.Equal(t, 2.0, sectors[1].ChangePercent)
	assert.Equal(t, "Energy", sectors[2].Sector)
	assert.Equal(t, -5.0, sectors[2].ChangePercent)
	assert.Equal(t, int32(11), atomic.LoadInt32(&calls))
}

func TestGetCompanyInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(aaplChart))
	}))
	defer srv.Close()

	info, err := testSource(srv.URL).GetCompanyInfo(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", info.Ticker)
	assert.Equal(t, "Apple Inc.", info.Name)
}

func chartWithCloses(first, last float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%[2]v},
		"timestamp":[1699885800,1700058600],
		"indicators":{"quote":[{"open":[%[1]v,%[2]v],"high":[%[1]v,%[2]v],"low":[%[1]v,%[2]v],
		"close":[%[1]v,%[2]v],"volume":[10,10]}]}}]}}`, first, last)
}
