package interfaces

import (
	"context"

	"finnie/src/models"
)

// -----------------------------------------------------------------------------
// IMarketData is the market-data collaborator.
// A ticker the service does not know is reported as helpers.ErrNotFound.
// -----------------------------------------------------------------------------

type IMarketData interface {

	// GetQuote returns the latest quote for one ticker.
	GetQuote(ctx context.Context, ticker string) (*models.MQuote, error)

	// -----------------------------------------------------------------------------

	// GetHistory returns daily OHLCV bars over a period (1d, 5d, 1mo, ... max).
	GetHistory(ctx context.Context, ticker, period string) (*models.MHistory, error)

	// -----------------------------------------------------------------------------

	// GetSectorPerformance returns sector ETF performance sorted best first.
	GetSectorPerformance(ctx context.Context, period string) ([]models.MSectorPerformance, error)

	// -----------------------------------------------------------------------------

	// GetCompanyInfo returns descriptive company data.
	GetCompanyInfo(ctx context.Context, ticker string) (*models.MCompanyInfo, error)
}
