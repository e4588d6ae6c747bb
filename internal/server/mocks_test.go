package server

import (
	"context"

	"github.com/bobmcallan/symphony/internal/app"
	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/interfaces"
	"github.com/bobmcallan/symphony/internal/models"
)

type mockStockService struct {
	quote   *models.StockQuote
	candles *models.StockCandles
	err     error

	gotSymbol   string
	gotRange    string
	gotInterval string
	calls       int
}

func (m *mockStockService) GetQuote(_ context.Context, symbol string) (*models.StockQuote, error) {
	m.calls++
	m.gotSymbol = symbol
	return m.quote, m.err
}

func (m *mockStockService) GetHistory(_ context.Context, symbol, rng, interval string) (*models.StockCandles, error) {
	m.calls++
	m.gotSymbol, m.gotRange, m.gotInterval = symbol, rng, interval
	return m.candles, m.err
}

type mockInsightsService struct {
	investments *interfaces.InsightsDocument
	theses      *interfaces.InsightsDocument
	err         error
}

func (m *mockInsightsService) LatestFolder(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "2024-06-30", nil
}

func (m *mockInsightsService) GetInvestments(_ context.Context) (*interfaces.InsightsDocument, error) {
	return m.investments, m.err
}

func (m *mockInsightsService) GetTheses(_ context.Context) (*interfaces.InsightsDocument, error) {
	return m.theses, m.err
}

func newTestServer(stock interfaces.StockService, ins interfaces.InsightsService) *Server {
	if stock == nil {
		stock = &mockStockService{}
	}
	if ins == nil {
		ins = &mockInsightsService{}
	}
	return NewServer(&app.App{
		Config:          &common.Config{},
		Logger:          common.NewSilentLogger(),
		StockService:    stock,
		InsightsService: ins,
	})
}
