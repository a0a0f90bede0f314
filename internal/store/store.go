// Package store persists the user's manually added symbols in a local
// SQLite database.
package store

import "context"

// SymbolStore persists the manual symbol list across sessions.
type SymbolStore interface {
	// AddSymbol records a symbol. Adding a symbol that already exists is a
	// no-op.
	AddSymbol(ctx context.Context, symbol string) error
	// ListSymbols returns all stored symbols in insertion order.
	ListSymbols(ctx context.Context) ([]string, error)
	Close() error
}
