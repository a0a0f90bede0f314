package timeframe

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		selection string
		primary   Step
		fallbacks []Step
	}{
		{"1H", Step{Gran5Min, 48}, []Step{{Gran15Min, 48}, {Gran1H, 48}}},
		{"4H", Step{Gran5Min, 96}, []Step{{Gran15Min, 96}, {Gran1H, 96}}},
		{"1D", Step{Gran1H, 168}, nil},
		{"1W", Step{Gran1H, 720}, []Step{{Gran1D, 720}}},
		{"bogus", Step{Gran5Min, 168}, nil},
		{"", Step{Gran5Min, 168}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			plan := Resolve(tt.selection)
			if plan.Primary != tt.primary {
				t.Errorf("Primary = %+v, want %+v", plan.Primary, tt.primary)
			}
			if len(plan.Fallbacks) != len(tt.fallbacks) {
				t.Fatalf("Fallbacks = %+v, want %+v", plan.Fallbacks, tt.fallbacks)
			}
			for i, want := range tt.fallbacks {
				if plan.Fallbacks[i] != want {
					t.Errorf("Fallbacks[%d] = %+v, want %+v", i, plan.Fallbacks[i], want)
				}
			}
		})
	}
}

func TestSynthetic(t *testing.T) {
	tests := []struct {
		selection string
		points    int
		interval  time.Duration
	}{
		{"1H", 60, time.Minute},
		{"4H", 48, 5 * time.Minute},
		{"1D", 78, 20 * time.Minute},
		{"1W", 35, 6 * time.Hour},
		{"bogus", 50, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			p := Synthetic(tt.selection)
			if p.Points != tt.points {
				t.Errorf("Points = %d, want %d", p.Points, tt.points)
			}
			if p.Interval != tt.interval {
				t.Errorf("Interval = %v, want %v", p.Interval, tt.interval)
			}
		})
	}
}
