package indicator

import "math"

// trueRange is max(h-l, |h-prevClose|, |l-prevClose|); the first bar has no previous close
func trueRange(highs, lows, closes []float64, i int) float64 {
	tr := highs[i] - lows[i]
	if i == 0 {
		return tr
	}
	prev := closes[i-1]
	return math.Max(tr, math.Max(math.Abs(highs[i]-prev), math.Abs(lows[i]-prev)))
}

// atr seeds with the mean of the first n true ranges at n-1, then Wilder-smooths
func atr(highs, lows, closes []float64, n int) line {
	out := line{values: make([]float64, len(closes)), start: n - 1}
	if n > len(closes) {
		out.start = len(closes)
		return out
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += trueRange(highs, lows, closes, i)
	}
	avg := sum / float64(n)
	out.values[n-1] = avg

	for i := n; i < len(closes); i++ {
		avg = wilder(avg, trueRange(highs, lows, closes, i), n)
		out.values[i] = avg
	}
	return out
}
