package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/utils"

	"golang.org/x/sync/singleflight"
)

// MarketDataManager fronts one or more sources, asked in order, and caches
// answers. Entries live for cache_seconds while the ticker's exchange is
// trading and closed_cache_seconds otherwise.
type MarketDataManager struct {
	Sources   []interfaces.IMarketData
	Scheduler *utils.MarketScheduler
	Logger    *logger.Logger

	OpenTTL   time.Duration
	ClosedTTL time.Duration

	// Now is swapped in tests
	Now func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

type cacheEntry struct {
	value   interface{}
	expires time.Time
}

// -----------------------------------------------------------------------------

func NewMarketDataManager(cfg *models.MConfig, sources []interfaces.IMarketData, scheduler *utils.MarketScheduler, log *logger.Logger) *MarketDataManager {
	open := time.Duration(cfg.MarketData.CacheSeconds) * time.Second
	closed := time.Duration(cfg.MarketData.ClosedCacheSeconds) * time.Second
	if closed < open {
		closed = open
	}
	return &MarketDataManager{
		Sources:   sources,
		Scheduler: scheduler,
		Logger:    log,
		OpenTTL:   open,
		ClosedTTL: closed,
		Now:       time.Now,
		cache:     make(map[string]cacheEntry),
	}
}

// -----------------------------------------------------------------------------

func (m *MarketDataManager) GetQuote(ctx context.Context, ticker string) (*models.MQuote, error) {
	ticker = utils.NormalizeTicker(ticker)
	v, err := m.cached(ctx, "quote:"+ticker, ticker, func(ctx context.Context, src interfaces.IMarketData) (interface{}, error) {
		return src.GetQuote(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MQuote), nil
}

// -----------------------------------------------------------------------------

func (m *MarketDataManager) GetHistory(ctx context.Context, ticker, period string) (*models.MHistory, error) {
	ticker = utils.NormalizeTicker(ticker)
	period = utils.NormalizePeriod(period)
	v, err := m.cached(ctx, "history:"+ticker+":"+period, ticker, func(ctx context.Context, src interfaces.IMarketData) (interface{}, error) {
		return src.GetHistory(ctx, ticker, period)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MHistory), nil
}

// -----------------------------------------------------------------------------

func (m *MarketDataManager) GetSectorPerformance(ctx context.Context, period string) ([]models.MSectorPerformance, error) {
	if period == "" {
		period = "1mo"
	}
	v, err := m.cached(ctx, "sectors:"+period, "SPY", func(ctx context.Context, src interfaces.IMarketData) (interface{}, error) {
		return src.GetSectorPerformance(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.MSectorPerformance), nil
}

// -----------------------------------------------------------------------------

func (m *MarketDataManager) GetCompanyInfo(ctx context.Context, ticker string) (*models.MCompanyInfo, error) {
	ticker = utils.NormalizeTicker(ticker)
	v, err := m.cached(ctx, "info:"+ticker, ticker, func(ctx context.Context, src interfaces.IMarketData) (interface{}, error) {
		return src.GetCompanyInfo(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MCompanyInfo), nil
}

// -----------------------------------------------------------------------------

// Purge drops expired entries. The server calls it on a ticker.
func (m *MarketDataManager) Purge() int {
	now := m.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.cache {
		if now.After(e.expires) {
			delete(m.cache, k)
			removed++
		}
	}
	return removed
}

// -----------------------------------------------------------------------------

func (m *MarketDataManager) cached(
	ctx context.Context,
	key, ticker string,
	fetch func(context.Context, interfaces.IMarketData) (interface{}, error),
) (interface{}, error) {
	// 1. Cache hit
	m.mu.RLock()
	e, ok := m.cache[key]
	m.mu.RUnlock()
	if ok && m.Now().Before(e.expires) {
		return e.value, nil
	}

	// 2. One fetch per key at a time; concurrent callers share the answer
	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		v, err := m.firstSource(ctx, fetch)
		if err != nil {
			return nil, err
		}

		// 3. Store
		if ttl := m.ttl(ticker); ttl > 0 {
			m.mu.Lock()
			m.cache[key] = cacheEntry{value: v, expires: m.Now().Add(ttl)}
			m.mu.Unlock()
		}
		return v, nil
	})
	return v, err
}

// firstSource asks each source in order. Not-found from every source stays
// not-found so hosts can answer 404.
func (m *MarketDataManager) firstSource(ctx context.Context, fetch func(context.Context, interfaces.IMarketData) (interface{}, error)) (interface{}, error) {
	if len(m.Sources) == 0 {
		return nil, helpers.Unavailable("market data", errors.New("no sources configured"))
	}

	var lastErr error
	for i, src := range m.Sources {
		v, err := fetch(ctx, src)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.Logger.Debug("Market data source %d failed: %v", i, err)
		lastErr = err
	}
	if errors.Is(lastErr, helpers.ErrNotFound) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all market data sources failed: %w", lastErr)
}

func (m *MarketDataManager) ttl(ticker string) time.Duration {
	if m.Scheduler == nil {
		return m.OpenTTL
	}
	return m.Scheduler.CacheTTL(ticker, m.OpenTTL, m.ClosedTTL)
}
