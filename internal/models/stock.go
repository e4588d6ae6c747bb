// Package models defines data structures for Symphony
package models

import "time"

// StockQuote is the reshaped latest-session snapshot returned by /api/stock/quote.
// Day high, low and open are omitted when the upstream meta does not carry them.
type StockQuote struct {
	RegularMarketPrice         float64  `json:"regularMarketPrice"`
	RegularMarketChange        float64  `json:"regularMarketChange"`
	RegularMarketChangePercent float64  `json:"regularMarketChangePercent"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh,omitempty"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow,omitempty"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen,omitempty"`
	RegularMarketPreviousClose float64  `json:"regularMarketPreviousClose"`
}

// StockCandles is a parallel-array price history. All arrays share the
// length of Timestamp; null entries from upstream are kept as nil.
type StockCandles struct {
	Timestamp []int64    `json:"timestamp"`
	Close     []*float64 `json:"close"`
	High      []*float64 `json:"high"`
	Low       []*float64 `json:"low"`
	Open      []*float64 `json:"open"`
	Volume    []*int64   `json:"volume"`
}

// PricePoint is one non-null close with its bar time.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// Closes returns the close series with null bars dropped. Timestamps are
// dropped together with their close so the series stays aligned.
func (c *StockCandles) Closes() []PricePoint {
	if c == nil {
		return nil
	}
	n := len(c.Timestamp)
	if len(c.Close) < n {
		n = len(c.Close)
	}
	points := make([]PricePoint, 0, n)
	for i := 0; i < n; i++ {
		if c.Close[i] == nil {
			continue
		}
		points = append(points, PricePoint{
			Time:  time.Unix(c.Timestamp[i], 0).UTC(),
			Close: *c.Close[i],
		})
	}
	return points
}

// ChartMeta is the validated subset of upstream chart metadata a quote is built from.
// PreviousClose is always non-zero once validated.
type ChartMeta struct {
	Symbol               string
	Currency             string
	RegularMarketPrice   float64
	PreviousClose        float64
	RegularMarketDayHigh *float64
	RegularMarketDayLow  *float64
	RegularMarketOpen    *float64
}
