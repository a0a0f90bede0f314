// Package indicator provides the trend math used by the chart: exponential
// moving averages and synthetic price series for when no live data exists.
package indicator

// EMA computes an exponential moving average over prices, seeded with the
// first price. The result has the same length as the input. The smoothing
// constant is 2/(period+1).
func EMA(prices []float64, period int) []float64 {
	if len(prices) == 0 || period <= 0 {
		return nil
	}

	k := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}
