package yahoo

import (
	"fmt"

	"github.com/bobmcallan/symphony/internal/models"
)

// APIError is returned when upstream answers with a non-2xx status.
type APIError struct {
	StatusCode  int
	Symbol      string
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("yahoo chart API error: status %d for %s: %s", e.StatusCode, e.Symbol, e.Description)
	}
	return fmt.Sprintf("yahoo chart API error: status %d for %s", e.StatusCode, e.Symbol)
}

// SchemaError is returned when a 2xx payload does not have the expected shape.
type SchemaError struct {
	Symbol string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("yahoo chart schema error for %s: %s", e.Symbol, e.Reason)
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       *chartMeta `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators struct {
		Quote []quoteIndicator `json:"quote"`
	} `json:"indicators"`
}

type chartMeta struct {
	Symbol               string   `json:"symbol"`
	Currency             string   `json:"currency"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	PreviousClose        *float64 `json:"previousClose"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	RegularMarketOpen    *float64 `json:"regularMarketOpen"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// quoteMeta validates the fields a quote needs. previousClose is preferred;
// chartPreviousClose is the fallback some instruments report instead.
func (r *chartResult) quoteMeta(symbol string) (*models.ChartMeta, error) {
	m := r.Meta
	if m == nil {
		return nil, &SchemaError{Symbol: symbol, Reason: "meta is missing"}
	}
	if m.RegularMarketPrice == nil {
		return nil, &SchemaError{Symbol: symbol, Reason: "meta.regularMarketPrice is missing"}
	}

	prev := m.PreviousClose
	if prev == nil {
		prev = m.ChartPreviousClose
	}
	if prev == nil {
		return nil, &SchemaError{Symbol: symbol, Reason: "meta.previousClose is missing"}
	}
	if *prev == 0 {
		return nil, &SchemaError{Symbol: symbol, Reason: "meta.previousClose is zero"}
	}

	return &models.ChartMeta{
		Symbol:               m.Symbol,
		Currency:             m.Currency,
		RegularMarketPrice:   *m.RegularMarketPrice,
		PreviousClose:        *prev,
		RegularMarketDayHigh: m.RegularMarketDayHigh,
		RegularMarketDayLow:  m.RegularMarketDayLow,
		RegularMarketOpen:    m.RegularMarketOpen,
	}, nil
}

// candles validates and copies the first quote indicator. Every present
// array must match the timestamp length; absent arrays become empty.
func (r *chartResult) candles(symbol string) (*models.StockCandles, error) {
	if len(r.Indicators.Quote) == 0 {
		return nil, &SchemaError{Symbol: symbol, Reason: "indicators.quote is empty"}
	}
	q := r.Indicators.Quote[0]
	n := len(r.Timestamp)

	check := func(name string, got int) error {
		if got != n {
			return &SchemaError{Symbol: symbol, Reason: fmt.Sprintf("indicators.quote[0].%s has %d entries, timestamp has %d", name, got, n)}
		}
		return nil
	}
	for _, a := range []struct {
		name string
		len  int
	}{
		{"close", len(q.Close)},
		{"high", len(q.High)},
		{"low", len(q.Low)},
		{"open", len(q.Open)},
		{"volume", len(q.Volume)},
	} {
		if err := check(a.name, a.len); err != nil {
			return nil, err
		}
	}

	return &models.StockCandles{
		Timestamp: orEmpty(r.Timestamp),
		Close:     orEmpty(q.Close),
		High:      orEmpty(q.High),
		Low:       orEmpty(q.Low),
		Open:      orEmpty(q.Open),
		Volume:    orEmpty(q.Volume),
	}, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
