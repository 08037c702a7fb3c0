package utils

import (
	"testing"
	"time"

	"finnie/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234.50", Money(1234.5))
	assert.Equal(t, "0.00", Money(0))
	assert.Equal(t, "-1,000,000.00", Money(-1e6))
	assert.Equal(t, "999.99", Money(999.99))
	assert.Equal(t, "52,345,678", Int(52345678))
	assert.Equal(t, "+1.5", Signed(1.5, 1))
	assert.Equal(t, "+0.00", Signed(0, 2))
	assert.Equal(t, "-2.25", Signed(-2.25, 2))
	assert.Equal(t, "50.0", ShortFloat(50))
	assert.Equal(t, "33.3", ShortFloat(Round(33.333, 1)))
	assert.Equal(t, "$2.9T", AbbreviateCap(2.9e12))
	assert.Equal(t, "$350.0B", AbbreviateCap(3.5e11))
	assert.Equal(t, "$12.0M", AbbreviateCap(1.2e7))
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer[int](3)
	assert.Equal(t, []int{}, rb.GetAll())

	for i := 1; i <= 5; i++ {
		rb.Append(i)
	}
	assert.True(t, rb.IsFull())
	assert.Equal(t, []int{3, 4, 5}, rb.GetAll())
	assert.Equal(t, []int{4, 5}, rb.GetLatest(2))
	assert.Equal(t, []int{3, 4, 5}, rb.GetLatest(10))

	rb.Resize(2)
	assert.Equal(t, []int{4, 5}, rb.GetAll())
	rb.Append(6)
	assert.Equal(t, []int{5, 6}, rb.GetAll())

	rb.Resize(4)
	rb.Append(7)
	assert.Equal(t, []int{5, 6, 7}, rb.GetAll())

	rb.Clear()
	assert.Equal(t, 0, rb.Size())
}

func TestMemoryManager(t *testing.T) {
	mm := NewMemoryManager[string](0, 2, logger.NewLoggerFromZap(zap.NewNop(), "Memory"))

	mm.Add("conv-1", "a")
	mm.Add("conv-1", "b")
	mm.Add("conv-1", "c")
	mm.Add("conv-2", "x")

	assert.Equal(t, []string{"b", "c"}, mm.Latest("conv-1", 0))
	assert.Equal(t, []string{"c"}, mm.Latest("conv-1", 1))
	assert.Equal(t, 2, mm.Count("conv-1"))
	assert.Equal(t, []string{"conv-1", "conv-2"}, mm.Keys())

	mm.Delete("conv-1")
	assert.False(t, mm.Has("conv-1"))
	assert.Equal(t, []string{}, mm.Latest("conv-1", 0))

	mm.Cleanup()
	assert.Empty(t, mm.Keys())
}

func TestMemoryManagerShrinksOverLimit(t *testing.T) {
	mm := NewMemoryManager[int](1, 400, logger.NewLoggerFromZap(zap.NewNop(), "Memory"))
	mm.heapMB = func() float64 { return 10 }

	for i := 0; i < 300; i++ {
		mm.Add("k", i)
	}
	// each check at a multiple of 100 halves: 400 -> 200 -> 100
	require.Equal(t, 100, mm.Count("k"))
	latest := mm.Latest("k", 1)
	assert.Equal(t, []int{299}, latest)
}

func TestTradingCalendarIsShared(t *testing.T) {
	a := GetCalendar("AAPL")
	b := GetCalendar("MSFT")
	assert.Same(t, a, b)
	assert.Equal(t, "xnys", a.MIC)
	assert.Equal(t, "xlon", GetCalendar("VOD.L").MIC)
}

func TestMarketSchedulerWeekend(t *testing.T) {
	ms := NewMarketScheduler([]string{"AAPL", "SPY"}, logger.NewLoggerFromZap(zap.NewNop(), "Scheduler"))

	// Saturday noon in New York
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ms.Now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, ny) }

	assert.False(t, ms.AnyMarketOpen())
	assert.False(t, ms.IsOpen("AAPL"))
	assert.Equal(t, 15*time.Minute, ms.CacheTTL("AAPL", time.Minute, 15*time.Minute))

	// Wednesday 11:00 in New York
	ms.Now = func() time.Time { return time.Date(2024, 6, 12, 11, 0, 0, 0, ny) }
	assert.True(t, ms.AnyMarketOpen())
	assert.Equal(t, time.Minute, ms.CacheTTL("AAPL", time.Minute, 15*time.Minute))
}
