// Package stock serves reshaped quotes and price history from an upstream chart API
package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/interfaces"
	"github.com/bobmcallan/symphony/internal/models"
)

// History defaults when the caller omits range or interval.
const (
	DefaultRange    = "3mo"
	DefaultInterval = "1d"
)

// Service implements StockService. Every call is a fresh upstream round trip.
type Service struct {
	chart  interfaces.ChartClient
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewService creates a new stock service.
func NewService(chart interfaces.ChartClient, logger *common.Logger) *Service {
	return &Service{
		chart:  chart,
		logger: logger,
		now:    time.Now,
	}
}

// GetQuote returns the latest quote. Change is price minus previous close;
// change percent is that change over previous close, times 100.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	symbol = strings.TrimSpace(symbol)
	start := s.now()

	meta, err := s.chart.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}

	change := meta.RegularMarketPrice - meta.PreviousClose
	quote := &models.StockQuote{
		RegularMarketPrice:         meta.RegularMarketPrice,
		RegularMarketChange:        change,
		RegularMarketChangePercent: change / meta.PreviousClose * 100,
		RegularMarketDayHigh:       meta.RegularMarketDayHigh,
		RegularMarketDayLow:        meta.RegularMarketDayLow,
		RegularMarketOpen:          meta.RegularMarketOpen,
		RegularMarketPreviousClose: meta.PreviousClose,
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Float64("price", quote.RegularMarketPrice).
		Float64("change_pct", quote.RegularMarketChangePercent).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Quote served")

	return quote, nil
}

// GetHistory returns candles unfiltered; null bars are passed through.
func (s *Service) GetHistory(ctx context.Context, symbol, rng, interval string) (*models.StockCandles, error) {
	symbol = strings.TrimSpace(symbol)
	if rng == "" {
		rng = DefaultRange
	}
	if interval == "" {
		interval = DefaultInterval
	}

	candles, err := s.chart.GetHistory(ctx, symbol, rng, interval)
	if err != nil {
		return nil, fmt.Errorf("history %s (%s/%s): %w", symbol, rng, interval, err)
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Str("range", rng).
		Str("interval", interval).
		Int("bars", len(candles.Timestamp)).
		Msg("History served")

	return candles, nil
}

// Ensure Service implements StockService
var _ interfaces.StockService = (*Service)(nil)
