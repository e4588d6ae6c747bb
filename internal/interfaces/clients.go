// Package interfaces defines service contracts for Symphony
package interfaces

import (
	"context"

	"github.com/bobmcallan/symphony/internal/models"
)

// ChartClient provides access to an upstream market chart API
type ChartClient interface {
	// GetQuote retrieves the latest-session chart meta for a symbol
	GetQuote(ctx context.Context, symbol string) (*models.ChartMeta, error)

	// GetHistory retrieves candles for a symbol over a range at an interval
	GetHistory(ctx context.Context, symbol, rng, interval string) (*models.StockCandles, error)
}
