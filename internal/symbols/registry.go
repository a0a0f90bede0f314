// Package symbols maintains the dashboard's symbol universe: the union of
// the backend's tracked symbols and the user's manually added ones.
package symbols

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/coinvest518/alpaca-agent/internal/api"
	"github.com/coinvest518/alpaca-agent/internal/store"
)

// SymbolSource fetches the backend's symbol sets.
type SymbolSource interface {
	Symbols(ctx context.Context) (*api.SymbolSets, error)
}

// Mirror receives manually added symbols, e.g. an external watchlist.
type Mirror interface {
	Add(ctx context.Context, symbol string) error
}

// View is an immutable snapshot of the symbol universe. Display holds every
// symbol in first-seen order; Positions and Orders annotate subsets of it
// and never filter it.
type View struct {
	Display   []string
	Positions map[string]struct{}
	Orders    map[string]struct{}
	Current   string
}

// Annotation returns "position", "order", or "" for a display symbol. A
// symbol in both sets is annotated as a position.
func (v View) Annotation(symbol string) string {
	if _, ok := v.Positions[symbol]; ok {
		return "position"
	}
	if _, ok := v.Orders[symbol]; ok {
		return "order"
	}
	return ""
}

// Registry merges server and manual symbols and reconciles the currently
// selected symbol against the merged set.
type Registry struct {
	source SymbolSource
	store  store.SymbolStore
	mirror Mirror
	logger *slog.Logger

	mu   sync.Mutex
	last View
}

// NewRegistry creates a registry. mirror may be nil.
func NewRegistry(source SymbolSource, st store.SymbolStore, mirror Mirror, logger *slog.Logger) *Registry {
	return &Registry{source: source, store: st, mirror: mirror, logger: logger}
}

// Normalize canonicalises user symbol input.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Refresh rebuilds the view from the backend and the manual store. Neither
// failing is fatal: a failed source contributes an empty set and is logged.
// current is the previously selected symbol; it is kept when still present,
// otherwise the selection moves to the first position symbol, else the first
// display symbol.
func (r *Registry) Refresh(ctx context.Context, current string) View {
	var server api.SymbolSets
	if sets, err := r.source.Symbols(ctx); err != nil {
		r.logger.Warn("fetching symbols failed", "error", err)
	} else {
		server = *sets
	}

	manual, err := r.store.ListSymbols(ctx)
	if err != nil {
		r.logger.Warn("loading manual symbols failed", "error", err)
		manual = nil
	}

	view := buildView(server, manual, current)

	r.mu.Lock()
	r.last = view
	r.mu.Unlock()

	return view
}

// AddManual adds a user-entered symbol. Empty input and symbols already in
// the display set are no-ops. On success the symbol is persisted, the view
// rebuilt, and the selection moved to the new symbol.
func (r *Registry) AddManual(ctx context.Context, raw, current string) (View, error) {
	symbol := Normalize(raw)

	r.mu.Lock()
	last := r.last
	r.mu.Unlock()

	if symbol == "" {
		return last, nil
	}
	for _, s := range last.Display {
		if s == symbol {
			return last, nil
		}
	}

	if err := r.store.AddSymbol(ctx, symbol); err != nil {
		return last, fmt.Errorf("persisting symbol %s: %w", symbol, err)
	}

	if r.mirror != nil {
		if err := r.mirror.Add(ctx, symbol); err != nil {
			r.logger.Warn("mirroring symbol to watchlist failed", "symbol", symbol, "error", err)
		}
	}

	return r.Refresh(ctx, symbol), nil
}

// Last returns the most recently built view.
func (r *Registry) Last() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func buildView(server api.SymbolSets, manual []string, current string) View {
	seen := make(map[string]struct{})
	var display []string
	add := func(raw string) {
		s := Normalize(raw)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		display = append(display, s)
	}

	for _, s := range server.Symbols {
		add(s)
	}
	for _, s := range manual {
		add(s)
	}

	positions := make(map[string]struct{}, len(server.PositionSymbols))
	for _, s := range server.PositionSymbols {
		positions[Normalize(s)] = struct{}{}
	}
	orders := make(map[string]struct{}, len(server.OrderSymbols))
	for _, s := range server.OrderSymbols {
		orders[Normalize(s)] = struct{}{}
	}

	return View{
		Display:   display,
		Positions: positions,
		Orders:    orders,
		Current:   reconcile(current, display, server.PositionSymbols),
	}
}

// reconcile keeps the previous selection when it is still displayed, else
// prefers the first position symbol, else the first display symbol.
func reconcile(current string, display, positionSymbols []string) string {
	for _, s := range display {
		if s == current {
			return current
		}
	}
	for _, p := range positionSymbols {
		p = Normalize(p)
		for _, s := range display {
			if s == p {
				return p
			}
		}
	}
	if len(display) > 0 {
		return display[0]
	}
	return ""
}
