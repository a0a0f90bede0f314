package indicator

import (
	"math/rand/v2"
	"time"

	"github.com/coinvest518/alpaca-agent/internal/timeframe"
)

// Point is one synthetic price sample.
type Point struct {
	Time  time.Time
	Price float64
}

const (
	syntheticStartRatio = 0.98
	syntheticVolatility = 0.002
	syntheticReversion  = 0.001
)

// Synthetic generates a random-walk price series anchored on the last known
// quote. The walk starts 2% below the quote and each step applies a bounded
// random change plus a slight pull back toward the quote. Timestamps are
// spaced by the profile's interval and end at now. rng may be nil, in which
// case the shared source is used.
func Synthetic(quote float64, profile timeframe.Profile, now time.Time, rng *rand.Rand) []Point {
	if quote <= 0 || profile.Points <= 0 {
		return nil
	}

	uniform := rand.Float64
	if rng != nil {
		uniform = rng.Float64
	}

	points := make([]Point, profile.Points)
	price := quote * syntheticStartRatio
	for i := range points {
		change := (uniform() - 0.5) * 2 * syntheticVolatility
		reversion := (quote - price) * syntheticReversion
		price += price * (change + reversion)

		points[i] = Point{
			Time:  now.Add(-time.Duration(profile.Points-1-i) * profile.Interval),
			Price: price,
		}
	}
	return points
}
