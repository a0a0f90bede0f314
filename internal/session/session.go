// Package session holds the dashboard's mutable view state: the selected
// symbol and timeframe, the last quotes seen per symbol, the backend's
// trading-active flag, and the last refresh stamp. All access is guarded so
// the refresh loop and the UI can share it.
package session

import (
	"sync"
	"time"
)

// DefaultSelection is the timeframe shown on startup.
const DefaultSelection = "1H"

// State is the shared session state.
type State struct {
	mu         sync.RWMutex
	symbol     string
	selection  string
	quotes     map[string]float64
	active     bool
	lastUpdate time.Time
}

// New creates a session with the default timeframe selected.
func New() *State {
	return &State{
		selection: DefaultSelection,
		quotes:    make(map[string]float64),
	}
}

// Symbol returns the currently selected symbol.
func (s *State) Symbol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbol
}

// SetSymbol changes the selected symbol.
func (s *State) SetSymbol(symbol string) {
	s.mu.Lock()
	s.symbol = symbol
	s.mu.Unlock()
}

// Selection returns the current timeframe selection.
func (s *State) Selection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SetSelection changes the timeframe selection.
func (s *State) SetSelection(selection string) {
	s.mu.Lock()
	s.selection = selection
	s.mu.Unlock()
}

// Quote returns the last known price for a symbol.
func (s *State) Quote(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.quotes[symbol]
	return price, ok
}

// SetQuote records the last seen price for a symbol.
func (s *State) SetQuote(symbol string, price float64) {
	s.mu.Lock()
	s.quotes[symbol] = price
	s.mu.Unlock()
}

// Active reports whether the backend's trading loop is running.
func (s *State) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive records the backend's trading-active flag.
func (s *State) SetActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

// LastUpdate returns when the last refresh cycle settled.
func (s *State) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Stamp records the completion time of a refresh cycle.
func (s *State) Stamp(t time.Time) {
	s.mu.Lock()
	s.lastUpdate = t
	s.mu.Unlock()
}
