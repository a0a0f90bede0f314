// Package api implements the REST client for the trading backend's /api/*
// endpoints. The backend wraps every payload in an envelope with a status
// field; a non-success status is reported as ErrEmptyResult so callers can
// fall back without treating it as a transport failure.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyResult marks a well-formed response that carried no usable data,
// either a non-success status or zero rows.
var ErrEmptyResult = errors.New("empty result")

// Client talks to the trading backend over HTTP.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

// NewClient creates a backend client with the given base URL and request
// timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{rc: rc, logger: logger}
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	req := c.rc.R().SetContext(ctx).SetResult(out)
	if params != nil {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		c.logger.Debug("request failed", "path", path, "error", err)
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Data endpoints
// ---------------------------------------------------------------------------

// Symbols fetches the tracked symbol universe with its position and order
// subsets.
func (c *Client) Symbols(ctx context.Context) (*SymbolSets, error) {
	var out struct {
		Status string `json:"status"`
		SymbolSets
	}
	if err := c.get(ctx, "/api/symbols", nil, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" {
		return nil, fmt.Errorf("symbols status %q: %w", out.Status, ErrEmptyResult)
	}
	return &out.SymbolSets, nil
}

// HistoricalData fetches OHLCV bars for a symbol at the given granularity
// over the trailing lookback window.
func (c *Client) HistoricalData(ctx context.Context, symbol, granularity string, hours int) ([]Bar, error) {
	var out struct {
		Status string `json:"status"`
		Data   []Bar  `json:"data"`
	}
	path := "/api/historical_data/" + url.PathEscape(symbol)
	params := map[string]string{
		"timeframe": granularity,
		"hours":     strconv.Itoa(hours),
	}
	if err := c.get(ctx, path, params, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" || len(out.Data) == 0 {
		return nil, fmt.Errorf("historical data for %s at %s: %w", symbol, granularity, ErrEmptyResult)
	}
	return out.Data, nil
}

// MarketData fetches current quotes, keyed by symbol.
func (c *Client) MarketData(ctx context.Context, symbol string) (map[string]Quote, error) {
	var out struct {
		Status string           `json:"status"`
		Data   map[string]Quote `json:"data"`
	}
	if err := c.get(ctx, "/api/market_data", map[string]string{"symbol": symbol}, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" || len(out.Data) == 0 {
		return nil, fmt.Errorf("market data for %s: %w", symbol, ErrEmptyResult)
	}
	return out.Data, nil
}

// Portfolio fetches positions and portfolio totals.
func (c *Client) Portfolio(ctx context.Context) (*Portfolio, error) {
	var out struct {
		Status string    `json:"status"`
		Data   Portfolio `json:"data"`
	}
	if err := c.get(ctx, "/api/portfolio", nil, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" {
		return nil, fmt.Errorf("portfolio status %q: %w", out.Status, ErrEmptyResult)
	}
	return &out.Data, nil
}

// TradingStatus fetches the trading loop's active flag and the last cycle's
// decisions and analysis results.
func (c *Client) TradingStatus(ctx context.Context) (*TradingStatus, error) {
	var out TradingStatus
	if err := c.get(ctx, "/api/trading_status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// News fetches recent articles, keyed by symbol.
func (c *Client) News(ctx context.Context) (map[string][]NewsItem, error) {
	var out struct {
		Status string                `json:"status"`
		Data   map[string][]NewsItem `json:"data"`
	}
	if err := c.get(ctx, "/api/news", nil, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" || len(out.Data) == 0 {
		return nil, fmt.Errorf("news: %w", ErrEmptyResult)
	}
	return out.Data, nil
}

// ---------------------------------------------------------------------------
// Control endpoints
// ---------------------------------------------------------------------------

func (c *Client) control(ctx context.Context, path string, accepted ...string) (string, error) {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.get(ctx, path, nil, &out); err != nil {
		return "", err
	}
	for _, s := range accepted {
		if out.Status == s {
			return out.Message, nil
		}
	}
	if out.Message != "" {
		return "", fmt.Errorf("%s: %s", path, out.Message)
	}
	return "", fmt.Errorf("%s status %q: %w", path, out.Status, ErrEmptyResult)
}

// StartTrading asks the backend to start its trading loop.
func (c *Client) StartTrading(ctx context.Context) (string, error) {
	return c.control(ctx, "/api/start_trading", "success", "started")
}

// StopTrading asks the backend to stop its trading loop.
func (c *Client) StopTrading(ctx context.Context) (string, error) {
	return c.control(ctx, "/api/stop_trading", "success", "stopped")
}

// RunCycle asks the backend to run one trading cycle immediately.
func (c *Client) RunCycle(ctx context.Context) (string, error) {
	return c.control(ctx, "/api/run_cycle", "success")
}
