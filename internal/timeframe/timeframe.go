// Package timeframe maps the dashboard's timeframe selections to backend
// request parameters, fallback chains, and synthetic series profiles.
package timeframe

import "time"

// Backend granularity wire names.
const (
	Gran5Min  = "5Min"
	Gran15Min = "15Min"
	Gran1H    = "1H"
	Gran1D    = "1D"
)

// Step is one request in a fallback chain.
type Step struct {
	Granularity   string
	LookbackHours int
}

// Plan describes how to fetch a series for a timeframe selection: the
// primary request followed by alternate granularities tried in order.
type Plan struct {
	Primary   Step
	Fallbacks []Step
}

// Profile shapes a synthetic series when no live data is available.
type Profile struct {
	Points   int
	Interval time.Duration
}

// Resolve maps a selection ("1H", "4H", "1D", "1W") to its fetch plan.
// Unknown selections get a conservative default. Fallbacks reuse the
// primary's lookback except the weekly chain, which widens to daily bars
// over the full 720 hours.
func Resolve(selection string) Plan {
	switch selection {
	case "1H":
		return Plan{
			Primary: Step{Gran5Min, 48},
			Fallbacks: []Step{
				{Gran15Min, 48},
				{Gran1H, 48},
			},
		}
	case "4H":
		return Plan{
			Primary: Step{Gran5Min, 96},
			Fallbacks: []Step{
				{Gran15Min, 96},
				{Gran1H, 96},
			},
		}
	case "1D":
		return Plan{Primary: Step{Gran1H, 168}}
	case "1W":
		return Plan{
			Primary:   Step{Gran1H, 720},
			Fallbacks: []Step{{Gran1D, 720}},
		}
	default:
		return Plan{Primary: Step{Gran5Min, 168}}
	}
}

// Synthetic returns the synthetic series profile for a selection.
func Synthetic(selection string) Profile {
	switch selection {
	case "1H":
		return Profile{60, time.Minute}
	case "4H":
		return Profile{48, 5 * time.Minute}
	case "1D":
		return Profile{78, 20 * time.Minute}
	case "1W":
		return Profile{35, 6 * time.Hour}
	default:
		return Profile{50, time.Minute}
	}
}

// LabelFormat returns the time layout for chart axis labels on a selection.
func LabelFormat(selection string) string {
	switch selection {
	case "1D":
		return "01/02 15:04"
	case "1W":
		return "01/02"
	default:
		return "15:04"
	}
}
