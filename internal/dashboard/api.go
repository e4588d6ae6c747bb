package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobmcallan/symphony/internal/models"
)

// Timeframe selects the history window shown for a company.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// CandleInterval is the bar size requested for every timeframe.
const CandleInterval = "1d"

// Range maps the timeframe to a proxy range value. Unknown values use 1y.
func (t Timeframe) Range() string {
	switch t {
	case TimeframeWeek:
		return "7d"
	case TimeframeMonth:
		return "3mo"
	default:
		return "1y"
	}
}

// ParseTimeframe accepts week, month or year (case-insensitive).
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case TimeframeWeek, TimeframeMonth, TimeframeYear:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q (want week, month or year)", s)
	}
}

// API calls the quote proxy on the dashboard server.
type API struct {
	baseURL string
	client  HTTPDoer
}

// NewAPI creates a client for the proxy at baseURL.
func NewAPI(client HTTPDoer, baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// GetStockQuote fetches the current quote for symbol.
func (a *API) GetStockQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var quote models.StockQuote
	if err := a.get(ctx, "/api/stock/quote?"+q.Encode(), &quote); err != nil {
		return nil, fmt.Errorf("failed to fetch stock quote: %w", err)
	}
	return &quote, nil
}

// GetStockCandles fetches daily candles covering the timeframe.
func (a *API) GetStockCandles(ctx context.Context, symbol string, timeframe Timeframe) (*models.StockCandles, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("range", timeframe.Range())
	q.Set("interval", CandleInterval)

	var candles models.StockCandles
	if err := a.get(ctx, "/api/stock/history?"+q.Encode(), &candles); err != nil {
		return nil, fmt.Errorf("failed to fetch stock candles: %w", err)
	}
	return &candles, nil
}

func (a *API) get(ctx context.Context, pathAndQuery string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+pathAndQuery, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
