// Package yahoo provides a client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/interfaces"
	"github.com/bobmcallan/symphony/internal/models"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultTimeout = 30 * time.Second

	QuoteInterval = "1d"
	QuoteRange    = "1d"
)

// Client implements interfaces.ChartClient against the public chart endpoint.
// No API key is required.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative disables throttling.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new chart API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetQuote fetches the single-day chart for symbol and returns its validated meta.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.ChartMeta, error) {
	result, err := c.fetch(ctx, symbol, QuoteInterval, QuoteRange)
	if err != nil {
		return nil, err
	}
	return result.quoteMeta(symbol)
}

// GetHistory fetches candles for symbol over rng at interval. Both are passed
// to upstream verbatim.
func (c *Client) GetHistory(ctx context.Context, symbol, rng, interval string) (*models.StockCandles, error) {
	result, err := c.fetch(ctx, symbol, interval, rng)
	if err != nil {
		return nil, err
	}
	return result.candles(symbol)
}

// fetch performs one chart request and returns the first result.
func (c *Client) fetch(ctx context.Context, symbol, interval, rng string) (*chartResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("interval", interval)
	params.Set("range", rng)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Str("range", rng).Msg("Yahoo chart request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Dur("elapsed", elapsed).Msg("Yahoo chart request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chartResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Symbol: symbol}
		if decodeErr == nil && parsed.Chart.Error != nil {
			apiErr.Code = parsed.Chart.Error.Code
			apiErr.Description = parsed.Chart.Error.Description
		}
		c.logger.Warn().Str("symbol", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Yahoo chart non-OK response")
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &SchemaError{Symbol: symbol, Reason: "invalid JSON: " + decodeErr.Error()}
	}
	if parsed.Chart.Error != nil {
		return nil, &SchemaError{Symbol: symbol, Reason: "chart error: " + parsed.Chart.Error.Description}
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, &SchemaError{Symbol: symbol, Reason: "chart.result is empty"}
	}

	c.logger.Info().Str("symbol", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Yahoo chart API call")

	return &parsed.Chart.Result[0], nil
}

// Ensure Client implements ChartClient
var _ interfaces.ChartClient = (*Client)(nil)
