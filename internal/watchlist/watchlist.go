// Package watchlist mirrors the dashboard's manually added symbols to an
// Alpaca watchlist, so the list follows the user into their brokerage
// tooling. The mirror is best-effort and entirely optional.
package watchlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"github.com/coinvest518/alpaca-agent/internal/util"
)

// api is the slice of the Alpaca client the mirror uses.
type api interface {
	GetWatchlists() ([]alpacaapi.Watchlist, error)
	CreateWatchlist(req alpacaapi.CreateWatchlistRequest) (*alpacaapi.Watchlist, error)
	AddSymbolToWatchlist(watchlistID string, req alpacaapi.AddSymbolToWatchlistRequest) (*alpacaapi.Watchlist, error)
}

// Mirror pushes symbols into a named Alpaca watchlist. The watchlist is
// looked up (or created) lazily on the first add.
type Mirror struct {
	client api
	name   string
	logger *slog.Logger

	retryAttempts int
	retryDelay    time.Duration

	mu sync.Mutex
	id string
}

// New creates a mirror for the named watchlist. Returns nil when the API
// keys are empty, which disables mirroring.
func New(apiKey, apiSecret, name string, logger *slog.Logger) *Mirror {
	if apiKey == "" || apiSecret == "" {
		return nil
	}
	client := alpacaapi.NewClient(alpacaapi.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
	logger.Info("alpaca watchlist mirror enabled", "watchlist", name)
	return &Mirror{
		client:        client,
		name:          name,
		logger:        logger,
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
	}
}

// Add pushes a symbol to the watchlist, retrying transient API failures.
func (m *Mirror) Add(ctx context.Context, symbol string) error {
	return util.Retry(ctx, m.retryAttempts, m.retryDelay, func() error {
		id, err := m.watchlistID()
		if err != nil {
			return err
		}
		if _, err := m.client.AddSymbolToWatchlist(id, alpacaapi.AddSymbolToWatchlistRequest{Symbol: symbol}); err != nil {
			return fmt.Errorf("adding %s to watchlist: %w", symbol, err)
		}
		return nil
	})
}

// watchlistID resolves the named watchlist, creating it when absent.
func (m *Mirror) watchlistID() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id != "" {
		return m.id, nil
	}

	lists, err := m.client.GetWatchlists()
	if err != nil {
		return "", fmt.Errorf("listing watchlists: %w", err)
	}
	for _, w := range lists {
		if w.Name == m.name {
			m.id = w.ID
			return m.id, nil
		}
	}

	w, err := m.client.CreateWatchlist(alpacaapi.CreateWatchlistRequest{Name: m.name})
	if err != nil {
		return "", fmt.Errorf("creating watchlist %s: %w", m.name, err)
	}
	m.id = w.ID
	return m.id, nil
}
