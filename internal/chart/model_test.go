package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/coinvest518/alpaca-agent/internal/series"
)

func testSeries(source series.Source, closes ...float64) series.Series {
	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	s := series.Series{Symbol: "SPY", Selection: "1H", Source: source}
	for i, c := range closes {
		s.Points = append(s.Points, series.Point{
			Time:  base.Add(time.Duration(i) * time.Minute),
			Close: c,
		})
	}
	return s
}

func TestRenderReplacesWholesale(t *testing.T) {
	m := New(80, 20)

	m.Render(testSeries(series.SourceLive, 100, 101, 102), []float64{100, 100.5, 101})
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	m.Render(testSeries(series.SourceFallback, 200, 201), []float64{200, 200.5})
	if m.Len() != 2 {
		t.Fatalf("Len() = %d after replacement, want 2", m.Len())
	}
	if m.Source() != series.SourceFallback {
		t.Errorf("Source() = %q, want fallback", m.Source())
	}
}

func TestRenderEmptyClears(t *testing.T) {
	m := New(80, 20)

	m.Render(testSeries(series.SourceLive, 100, 101), []float64{100, 100.5})
	m.Render(series.Series{}, nil)

	if m.Len() != 0 {
		t.Errorf("Len() = %d after empty render, want 0", m.Len())
	}
	if !strings.Contains(m.View(), "No chart data") {
		t.Error("View() should show the empty placeholder")
	}
}

func TestRenderCopiesInput(t *testing.T) {
	m := New(80, 20)
	ema := []float64{100, 100.5}

	m.Render(testSeries(series.SourceLive, 100, 101), ema)
	ema[0] = 0

	// The model must not observe the caller's later mutation.
	view := m.View()
	if view == "" {
		t.Fatal("View() returned empty string")
	}
}

func TestViewDrawsChart(t *testing.T) {
	m := New(80, 20)
	m.Render(testSeries(series.SourceLive, 100, 102, 101, 104, 103), []float64{100, 101, 101, 102, 102})

	view := m.View()
	if view == "" {
		t.Fatal("View() returned empty string")
	}
	if strings.Contains(view, "SIMULATED") {
		t.Error("live series must not carry the SIMULATED badge")
	}
}

func TestViewMarksSynthetic(t *testing.T) {
	m := New(80, 20)
	m.Render(testSeries(series.SourceSynthetic, 100, 101, 102), []float64{100, 100.5, 101})

	if !strings.Contains(m.View(), "SIMULATED") {
		t.Error("synthetic series must carry the SIMULATED badge")
	}
}

func TestViewTinyTerminal(t *testing.T) {
	m := New(10, 3)
	m.Render(testSeries(series.SourceLive, 100, 101), []float64{100, 100.5})

	if !strings.Contains(m.View(), "Terminal too small") {
		t.Error("View() should degrade gracefully on tiny terminals")
	}
}

func TestAdaptiveMargin(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		ratio  float64 // expected margin / range
	}{
		{"low volatility", []float64{200, 201.5}, 0.5},
		{"medium volatility", []float64{100, 102}, 0.2},
		{"high volatility", []float64{100, 110}, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minP, maxP, margin := adaptiveMargin(tt.prices)
			if minP != tt.prices[0] || maxP != tt.prices[len(tt.prices)-1] {
				t.Errorf("bounds = %v, %v, want %v, %v", minP, maxP, tt.prices[0], tt.prices[len(tt.prices)-1])
			}
			want := (maxP - minP) * tt.ratio
			if margin != want {
				t.Errorf("margin = %v, want %v", margin, want)
			}
		})
	}
}

func TestAdaptiveMarginFlatSeries(t *testing.T) {
	_, _, margin := adaptiveMargin([]float64{100, 100, 100})
	if margin != 100*0.005 {
		t.Errorf("flat series margin = %v, want %v", margin, 100*0.005)
	}
}
