package series

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/coinvest518/alpaca-agent/internal/api"
)

type call struct {
	granularity string
	hours       int
}

// scriptedSource returns bars keyed by "granularity/hours" and records every
// request it sees.
type scriptedSource struct {
	responses map[string][]api.Bar
	errs      map[string]error
	calls     []call
}

func (s *scriptedSource) HistoricalData(_ context.Context, _ string, granularity string, hours int) ([]api.Bar, error) {
	s.calls = append(s.calls, call{granularity, hours})
	key := fmt.Sprintf("%s/%d", granularity, hours)
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	if bars, ok := s.responses[key]; ok {
		return bars, nil
	}
	return nil, api.ErrEmptyResult
}

func bars(n int) []api.Bar {
	out := make([]api.Bar, n)
	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = api.Bar{
			Timestamp: api.BarTime{Time: base.Add(time.Duration(i) * time.Minute)},
			Close:     100 + float64(i),
		}
	}
	return out
}

func newTestFetcher(src *scriptedSource) *Fetcher {
	return NewFetcher(src, slog.New(slog.DiscardHandler))
}

func TestFetchPrimarySucceeds(t *testing.T) {
	src := &scriptedSource{responses: map[string][]api.Bar{"5Min/48": bars(3)}}

	s := newTestFetcher(src).Fetch(context.Background(), "SPY", "1H", 500)

	if s.Source != SourceLive {
		t.Errorf("Source = %q, want live", s.Source)
	}
	if len(s.Points) != 3 {
		t.Errorf("got %d points, want 3", len(s.Points))
	}
	if len(src.calls) != 1 {
		t.Errorf("made %d requests, want 1 (no fallback after success)", len(src.calls))
	}
	if s.Points[0].Close != 100 {
		t.Errorf("Points[0].Close = %v, want 100", s.Points[0].Close)
	}
}

func TestFetchFallbackShortCircuits(t *testing.T) {
	// 5Min empty, 15Min has data: 1H must never be requested.
	src := &scriptedSource{responses: map[string][]api.Bar{"15Min/48": bars(2)}}

	s := newTestFetcher(src).Fetch(context.Background(), "SPY", "1H", 500)

	if s.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", s.Source)
	}
	want := []call{{"5Min", 48}, {"15Min", 48}}
	if len(src.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", src.calls, want)
	}
	for i, c := range want {
		if src.calls[i] != c {
			t.Errorf("calls[%d] = %v, want %v", i, src.calls[i], c)
		}
	}
}

func TestFetchWeeklyFallsBackToDaily(t *testing.T) {
	src := &scriptedSource{responses: map[string][]api.Bar{"1D/720": bars(5)}}

	s := newTestFetcher(src).Fetch(context.Background(), "SPY", "1W", 500)

	if s.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", s.Source)
	}
	want := []call{{"1H", 720}, {"1D", 720}}
	for i, c := range want {
		if src.calls[i] != c {
			t.Errorf("calls[%d] = %v, want %v", i, src.calls[i], c)
		}
	}
}

func TestFetchSyntheticLastResort(t *testing.T) {
	src := &scriptedSource{}

	s := newTestFetcher(src).Fetch(context.Background(), "SPY", "4H", 250)

	if s.Source != SourceSynthetic {
		t.Errorf("Source = %q, want synthetic", s.Source)
	}
	// 4H synthetic profile generates 48 points.
	if len(s.Points) != 48 {
		t.Errorf("got %d points, want 48", len(s.Points))
	}
	for i, p := range s.Points {
		if p.Close <= 0 {
			t.Fatalf("Points[%d].Close = %v, want positive", i, p.Close)
		}
	}
}

func TestFetchNoQuoteYieldsEmpty(t *testing.T) {
	src := &scriptedSource{}

	s := newTestFetcher(src).Fetch(context.Background(), "SPY", "1H", 0)

	if len(s.Points) != 0 {
		t.Errorf("got %d points, want 0 with no quote to anchor", len(s.Points))
	}
}

func TestFetchTransportErrorTreatedAsEmpty(t *testing.T) {
	src := &scriptedSource{
		errs:      map[string]error{"5Min/48": errors.New("connection refused")},
		responses: map[string][]api.Bar{"15Min/48": bars(2)},
	}

	s := newTestFetcher(src).Fetch(context.Background(), "SPY", "1H", 500)

	if s.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback after transport error", s.Source)
	}
	if len(s.Points) != 2 {
		t.Errorf("got %d points, want 2", len(s.Points))
	}
}
