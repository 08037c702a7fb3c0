package core

import (
	"math"

	"finnie/src/models"
)

// -----------------------------------------------------------------------------

// ComputeOHLCV summarizes a run of daily bars into one candle plus the mean close.
func ComputeOHLCV(bars []models.MHistoryBar) map[string]float64 {
	if len(bars) == 0 {
		return map[string]float64{
			"open": 0, "high": 0, "low": 0, "close": 0, "volume": 0, "avg_price": 0,
		}
	}

	high := -math.MaxFloat64
	low := math.MaxFloat64
	totalVol := 0.0
	sumPrice := 0.0

	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
		totalVol += b.Volume
		sumPrice += b.Close
	}

	return map[string]float64{
		"open":      bars[0].Open,
		"high":      high,
		"low":       low,
		"close":     bars[len(bars)-1].Close,
		"volume":    totalVol,
		"avg_price": sumPrice / float64(len(bars)),
	}
}

// -----------------------------------------------------------------------------

// CalculateChangePercent returns the change from previous to current in percent.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}

// -----------------------------------------------------------------------------

// DailyReturns returns close-to-close fractional returns.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// -----------------------------------------------------------------------------

// Rebase scales a series so its first value is 100.
func Rebase(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 || series[0] == 0 {
		return out
	}
	for i, v := range series {
		out[i] = v / series[0] * 100
	}
	return out
}
