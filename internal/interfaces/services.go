package interfaces

import (
	"context"
	"encoding/json"

	"github.com/bobmcallan/symphony/internal/models"
)

// StockService serves reshaped quotes and price history
type StockService interface {
	// GetQuote returns the latest quote with derived change figures
	GetQuote(ctx context.Context, symbol string) (*models.StockQuote, error)

	// GetHistory returns candles; empty rng or interval fall back to defaults
	GetHistory(ctx context.Context, symbol, rng, interval string) (*models.StockCandles, error)
}

// InsightsDocument is a JSON document loaded from the latest output folder.
type InsightsDocument struct {
	Folder string          // output folder name, e.g. "2024-06-30"
	Key    string          // full object key the document was read from
	Raw    json.RawMessage // document bytes, served verbatim
}

// InsightsService loads research documents from the newest output folder
type InsightsService interface {
	// LatestFolder returns the lexicographically greatest output folder name
	LatestFolder(ctx context.Context) (string, error)

	// GetInvestments loads investment.json from the latest folder
	GetInvestments(ctx context.Context) (*InsightsDocument, error)

	// GetTheses loads thesis.json from the latest folder
	GetTheses(ctx context.Context) (*InsightsDocument, error)
}
