package session

import (
	"sync"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	s := New()

	if s.Selection() != "1H" {
		t.Errorf("Selection() = %q, want 1H", s.Selection())
	}
	if s.Symbol() != "" {
		t.Errorf("Symbol() = %q, want empty", s.Symbol())
	}
	if s.Active() {
		t.Error("Active() = true, want false")
	}
	if _, ok := s.Quote("SPY"); ok {
		t.Error("Quote(SPY) found, want missing")
	}
}

func TestSettersAndGetters(t *testing.T) {
	s := New()

	s.SetSymbol("TSLA")
	s.SetSelection("1W")
	s.SetQuote("TSLA", 242.5)
	s.SetActive(true)
	stamp := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	s.Stamp(stamp)

	if s.Symbol() != "TSLA" {
		t.Errorf("Symbol() = %q, want TSLA", s.Symbol())
	}
	if s.Selection() != "1W" {
		t.Errorf("Selection() = %q, want 1W", s.Selection())
	}
	if price, ok := s.Quote("TSLA"); !ok || price != 242.5 {
		t.Errorf("Quote(TSLA) = %v, %v, want 242.5, true", price, ok)
	}
	if !s.Active() {
		t.Error("Active() = false, want true")
	}
	if !s.LastUpdate().Equal(stamp) {
		t.Errorf("LastUpdate() = %v, want %v", s.LastUpdate(), stamp)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetQuote("SPY", 500)
			s.SetActive(true)
		}()
		go func() {
			defer wg.Done()
			s.Quote("SPY")
			s.Active()
			s.Symbol()
		}()
	}
	wg.Wait()

	if price, ok := s.Quote("SPY"); !ok || price != 500 {
		t.Errorf("Quote(SPY) = %v, %v, want 500, true", price, ok)
	}
}
