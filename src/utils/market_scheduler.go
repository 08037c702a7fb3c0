package utils

import (
	"sync"
	"time"

	"finnie/src/logger"
)

// MarketScheduler tracks the exchanges behind a ticker set and reports whether
// any of them is trading. The market-data cache and the health report use it.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger

	// Now is swapped in tests
	Now func() time.Time

	mu sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(tickers []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		Now:       time.Now,
	}
	ms.MapTickersToCalendars(tickers)
	return ms
}

// -----------------------------------------------------------------------------

// MapTickersToCalendars replaces the tracked ticker set.
func (ms *MarketScheduler) MapTickersToCalendars(tickers []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar)
	unique := make(map[*TradingCalendar]bool)
	for _, ticker := range tickers {
		cal := GetCalendar(ticker)
		ms.Calendars[ticker] = cal
		unique[cal] = true
	}

	if ms.Logger != nil {
		ms.Logger.Debug("Mapped %d tickers to %d calendars", len(tickers), len(unique))
	}
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked markets are currently open
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.Now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	seen := make(map[*TradingCalendar]bool)
	for _, cal := range ms.Calendars {
		if seen[cal] {
			continue
		}
		seen[cal] = true
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the exchange for one ticker is trading right now.
func (ms *MarketScheduler) IsOpen(ticker string) bool {
	ms.mu.RLock()
	cal, ok := ms.Calendars[ticker]
	ms.mu.RUnlock()
	if !ok {
		cal = GetCalendar(ticker)
	}
	return cal.IsOpenOnMinute(ms.Now().UTC())
}

// -----------------------------------------------------------------------------

// CacheTTL picks the quote cache lifetime for a ticker.
func (ms *MarketScheduler) CacheTTL(ticker string, open, closed time.Duration) time.Duration {
	if ms.IsOpen(ticker) {
		return open
	}
	return closed
}
