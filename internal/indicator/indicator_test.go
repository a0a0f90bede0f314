package indicator

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/coinvest518/alpaca-agent/internal/timeframe"
)

func TestEMAConstantInput(t *testing.T) {
	prices := []float64{100, 100, 100, 100, 100}

	ema := EMA(prices, 20)
	if len(ema) != len(prices) {
		t.Fatalf("len(ema) = %d, want %d", len(ema), len(prices))
	}
	for i, v := range ema {
		if v != 100 {
			t.Errorf("ema[%d] = %v, want 100 (constant input is a fixed point)", i, v)
		}
	}
}

func TestEMASeedAndRecurrence(t *testing.T) {
	prices := []float64{10, 20}

	ema := EMA(prices, 20)
	if ema[0] != 10 {
		t.Errorf("ema[0] = %v, want seed 10", ema[0])
	}

	k := 2.0 / 21.0
	want := 20*k + 10*(1-k)
	if math.Abs(ema[1]-want) > 1e-12 {
		t.Errorf("ema[1] = %v, want %v", ema[1], want)
	}
}

func TestEMATracksTrend(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	ema := EMA(prices, 20)
	// EMA lags a rising series but must stay monotonically increasing.
	for i := 1; i < len(ema); i++ {
		if ema[i] <= ema[i-1] {
			t.Fatalf("ema[%d] = %v not above ema[%d] = %v", i, ema[i], i-1, ema[i-1])
		}
	}
	last := ema[len(ema)-1]
	if last >= prices[len(prices)-1] || last <= prices[0] {
		t.Errorf("final ema = %v, want between %v and %v", last, prices[0], prices[len(prices)-1])
	}
}

func TestEMAEmptyAndBadPeriod(t *testing.T) {
	if got := EMA(nil, 20); got != nil {
		t.Errorf("EMA(nil) = %v, want nil", got)
	}
	if got := EMA([]float64{1, 2}, 0); got != nil {
		t.Errorf("EMA(period=0) = %v, want nil", got)
	}
}

func TestSyntheticShape(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	profile := timeframe.Profile{Points: 60, Interval: time.Minute}
	rng := rand.New(rand.NewPCG(1, 2))

	points := Synthetic(250, profile, now, rng)
	if len(points) != 60 {
		t.Fatalf("got %d points, want 60", len(points))
	}

	// Timestamps end at now, spaced by the interval.
	if !points[len(points)-1].Time.Equal(now) {
		t.Errorf("last timestamp = %v, want %v", points[len(points)-1].Time, now)
	}
	for i := 1; i < len(points); i++ {
		if got := points[i].Time.Sub(points[i-1].Time); got != time.Minute {
			t.Fatalf("gap at %d = %v, want 1m", i, got)
		}
	}

	// Bounded walk: prices stay positive and near the anchor quote.
	for i, p := range points {
		if p.Price <= 0 {
			t.Fatalf("points[%d].Price = %v, want positive", i, p.Price)
		}
		if p.Price < 200 || p.Price > 300 {
			t.Errorf("points[%d].Price = %v drifted outside [200, 300]", i, p.Price)
		}
	}
}

func TestSyntheticNoQuote(t *testing.T) {
	profile := timeframe.Profile{Points: 10, Interval: time.Minute}
	if got := Synthetic(0, profile, time.Now(), nil); got != nil {
		t.Errorf("Synthetic(quote=0) = %v, want nil", got)
	}
}
