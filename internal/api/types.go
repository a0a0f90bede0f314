package api

import (
	"fmt"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Wire types for the backend /api/* endpoints
// ---------------------------------------------------------------------------

// BarTime wraps time.Time to accept the backend's two timestamp forms:
// RFC3339 and a naive ISO-8601 without a zone suffix, which means UTC.
type BarTime struct {
	time.Time
}

func (t *BarTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = ts
		return nil
	}
	ts, err := time.Parse("2006-01-02T15:04:05.999999999", s)
	if err != nil {
		return fmt.Errorf("parsing bar timestamp %q: %w", s, err)
	}
	t.Time = ts.UTC()
	return nil
}

// Bar is a single OHLCV candle from /api/historical_data.
type Bar struct {
	Timestamp BarTime `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// SymbolSets is the /api/symbols payload: the full tracked universe plus the
// subsets that currently have positions or open orders.
type SymbolSets struct {
	Symbols         []string `json:"symbols"`
	PositionSymbols []string `json:"position_symbols"`
	OrderSymbols    []string `json:"order_symbols"`
}

// Quote is a single symbol's entry in the /api/market_data response.
type Quote struct {
	Price               float64 `json:"price"`
	Volume              float64 `json:"volume"`
	SubscriptionLimited bool    `json:"subscription_limited"`
}

// Position is one open position in the portfolio.
type Position struct {
	Symbol         string  `json:"symbol"`
	Qty            float64 `json:"qty"`
	AvgEntryPrice  float64 `json:"avg_entry_price"`
	CurrentPrice   float64 `json:"current_price"`
	MarketValue    float64 `json:"market_value"`
	UnrealizedPL   float64 `json:"unrealized_pl"`
	UnrealizedPLPC float64 `json:"unrealized_plpc"`
}

// PortfolioSummary aggregates the portfolio totals.
type PortfolioSummary struct {
	TotalMarketValue    float64 `json:"total_market_value"`
	TotalUnrealizedPL   float64 `json:"total_unrealized_pl"`
	TotalUnrealizedPLPC float64 `json:"total_unrealized_plpc"`
	PositionCount       int     `json:"position_count"`
}

// Portfolio is the /api/portfolio payload.
type Portfolio struct {
	Positions []Position       `json:"positions"`
	Summary   PortfolioSummary `json:"summary"`
	Timestamp string           `json:"timestamp"`
}

// Indicators holds the technical indicator values attached to an analysis
// result. Pointers distinguish "absent" from zero.
type Indicators struct {
	Close           *float64 `json:"close"`
	RSI             *float64 `json:"rsi"`
	EMA             *float64 `json:"ema"`
	ATR             *float64 `json:"atr"`
	VolatilityScore *float64 `json:"volatility_score"`
}

// Analysis is one symbol's analysis result from the last trading cycle.
type Analysis struct {
	Indicators Indicators `json:"indicators"`
}

// LastCycle carries the output of the most recent trading cycle.
type LastCycle struct {
	Decisions       map[string]string   `json:"decisions"`
	AnalysisResults map[string]Analysis `json:"analysis_results"`
}

// TradingStatus is the /api/trading_status payload.
type TradingStatus struct {
	IsActive bool       `json:"is_active"`
	LastData *LastCycle `json:"last_data"`
}

// NewsItem is one article in the /api/news feed.
type NewsItem struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
	URL       string `json:"url"`
	Source    string `json:"source"`
}
