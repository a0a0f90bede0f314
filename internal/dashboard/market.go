package dashboard

import "time"

// MarketStatus labels the US equity trading session.
type MarketStatus string

const (
	MarketOpen       MarketStatus = "OPEN"
	MarketPreMarket  MarketStatus = "PRE-MARKET"
	MarketAfterHours MarketStatus = "AFTER HOURS"
	MarketClosed     MarketStatus = "CLOSED"
)

// newYork falls back to a fixed EST offset when the zone database is
// missing, which keeps the status roughly right instead of panicking.
var newYork = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}()

// MarketStatusAt classifies t against regular US market hours, 9:30-16:00
// Eastern, Monday through Friday.
func MarketStatusAt(t time.Time) MarketStatus {
	et := t.In(newYork)

	day := et.Weekday()
	if day == time.Saturday || day == time.Sunday {
		return MarketClosed
	}

	minutes := et.Hour()*60 + et.Minute()
	const open = 9*60 + 30
	const close = 16 * 60

	switch {
	case minutes >= open && minutes < close:
		return MarketOpen
	case minutes < open:
		return MarketPreMarket
	default:
		return MarketAfterHours
	}
}
