package stock

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockChartClient struct {
	meta    *models.ChartMeta
	candles *models.StockCandles
	err     error

	symbol   string
	rng      string
	interval string
}

func (m *mockChartClient) GetQuote(_ context.Context, symbol string) (*models.ChartMeta, error) {
	m.symbol = symbol
	return m.meta, m.err
}

func (m *mockChartClient) GetHistory(_ context.Context, symbol, rng, interval string) (*models.StockCandles, error) {
	m.symbol, m.rng, m.interval = symbol, rng, interval
	return m.candles, m.err
}

func ptr(v float64) *float64 { return &v }

func newTestService(client *mockChartClient) *Service {
	svc := NewService(client, common.NewSilentLogger())
	fixed := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func TestGetQuote_DerivesChange(t *testing.T) {
	client := &mockChartClient{meta: &models.ChartMeta{
		RegularMarketPrice:   110,
		PreviousClose:        100,
		RegularMarketDayHigh: ptr(112),
		RegularMarketDayLow:  ptr(99),
	}}
	svc := newTestService(client)

	quote, err := svc.GetQuote(context.Background(), " AAPL ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", client.symbol)
	assert.Equal(t, 110.0, quote.RegularMarketPrice)
	assert.Equal(t, 10.0, quote.RegularMarketChange)
	assert.Equal(t, 10.0, quote.RegularMarketChangePercent)
	assert.Equal(t, 100.0, quote.RegularMarketPreviousClose)
	assert.Equal(t, 112.0, *quote.RegularMarketDayHigh)
	assert.Nil(t, quote.RegularMarketOpen)
}

func TestGetQuote_ChangeInvariants(t *testing.T) {
	tests := []struct {
		price, prev float64
	}{
		{190.5, 188.0},
		{42.0, 50.0},
		{0.0123, 0.0125},
		{100, 100},
	}
	for _, tt := range tests {
		svc := newTestService(&mockChartClient{meta: &models.ChartMeta{RegularMarketPrice: tt.price, PreviousClose: tt.prev}})
		quote, err := svc.GetQuote(context.Background(), "X")
		require.NoError(t, err)

		assert.InDelta(t, quote.RegularMarketPrice-quote.RegularMarketPreviousClose, quote.RegularMarketChange, 1e-9)
		want := quote.RegularMarketChange / quote.RegularMarketPreviousClose * 100
		assert.False(t, math.IsNaN(quote.RegularMarketChangePercent))
		assert.InDelta(t, want, quote.RegularMarketChangePercent, 1e-9)
	}
}

func TestGetQuote_PropagatesUpstreamError(t *testing.T) {
	boom := errors.New("upstream down")
	svc := newTestService(&mockChartClient{err: boom})

	_, err := svc.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, boom)
}

func TestGetHistory_Defaults(t *testing.T) {
	client := &mockChartClient{candles: &models.StockCandles{Timestamp: []int64{}}}
	svc := newTestService(client)

	_, err := svc.GetHistory(context.Background(), "MSFT", "", "")
	require.NoError(t, err)
	assert.Equal(t, "3mo", client.rng)
	assert.Equal(t, "1d", client.interval)
}

func TestGetHistory_PassesThroughVerbatim(t *testing.T) {
	candles := &models.StockCandles{
		Timestamp: []int64{1, 2},
		Close:     []*float64{ptr(1), nil},
		High:      []*float64{ptr(1), nil},
		Low:       []*float64{ptr(1), nil},
		Open:      []*float64{ptr(1), nil},
		Volume:    []*int64{nil, nil},
	}
	client := &mockChartClient{candles: candles}
	svc := newTestService(client)

	got, err := svc.GetHistory(context.Background(), "MSFT", "1y", "1wk")
	require.NoError(t, err)
	assert.Same(t, candles, got)
	assert.Equal(t, "1y", client.rng)
	assert.Equal(t, "1wk", client.interval)
}
