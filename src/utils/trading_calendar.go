package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers market-hours questions using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// Yahoo suffix to ISO 10383 MIC. Anything unlisted trades on NYSE hours.
var suffixToMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".MI": "xmil",
	".MC": "xmad",
	".TO": "xtse",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
}

var (
	calendarsMu sync.Mutex
	calendars   = map[string]*TradingCalendar{}
)

// -----------------------------------------------------------------------------

// GetCalendar returns the shared calendar for the exchange a ticker trades on.
func GetCalendar(ticker string) *TradingCalendar {
	mic := "xnys"
	if i := strings.LastIndex(ticker, "."); i > 0 {
		if m, ok := suffixToMIC[strings.ToUpper(ticker[i:])]; ok {
			mic = m
		}
	}
	return calendarForMIC(mic)
}

// -----------------------------------------------------------------------------

func calendarForMIC(mic string) *TradingCalendar {
	calendarsMu.Lock()
	defer calendarsMu.Unlock()

	if tc, ok := calendars[mic]; ok {
		return tc
	}

	var tc *TradingCalendar
	if cal := calendar.GetCalendar(mic); cal != nil {
		tc = &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	} else {
		// Simple fallback: Mon-Fri 09:30-16:00 New York
		nyLoc, err := time.LoadLocation("America/New_York")
		if err != nil {
			nyLoc = time.UTC
		}
		tc = &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}
	calendars[mic] = tc
	return tc
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 local
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}
