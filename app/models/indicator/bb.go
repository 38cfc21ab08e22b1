package indicator

import "math"

// bollinger puts bands mult population standard deviations around SMA(n)
func bollinger(closes []float64, n int, mult float64) []Value {
	middle := sma(closes, n)

	out := make([]Value, len(closes))
	for i := range closes {
		if !middle.defined(i) {
			out[i] = Value{Payload: BandsValue{}}
			continue
		}
		mean := middle.values[i]
		variance := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		stddev := math.Sqrt(variance / float64(n))
		out[i] = Value{Valid: true, Payload: BandsValue{
			Upper:  mean + mult*stddev,
			Middle: mean,
			Lower:  mean - mult*stddev,
		}}
	}
	return out
}
