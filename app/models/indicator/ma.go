package indicator

// sma is a sliding-window running sum, defined from n-1
func sma(values []float64, n int) line {
	out := line{values: make([]float64, len(values)), start: n - 1}
	if out.start > len(values) {
		out.start = len(values)
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out.values[i] = sum / float64(n)
		}
	}
	return out
}

// ema is seeded with the SMA of values[from:from+n] at from+n-1.
// values before from are ignored, which lets MACD smooth its own line.
func ema(values []float64, n, from int) line {
	seed := from + n - 1
	out := line{values: make([]float64, len(values)), start: seed}
	if seed >= len(values) {
		out.start = len(values)
		return out
	}

	sum := 0.0
	for i := from; i <= seed; i++ {
		sum += values[i]
	}
	prev := sum / float64(n)
	out.values[seed] = prev

	k := 2.0 / float64(n+1)
	for i := seed + 1; i < len(values); i++ {
		prev = values[i]*k + prev*(1-k)
		out.values[i] = prev
	}
	return out
}

// wma weights the window 1..n from oldest to newest, defined from n-1
func wma(values []float64, n int) line {
	out := line{values: make([]float64, len(values)), start: n - 1}
	if out.start > len(values) {
		out.start = len(values)
	}

	divisor := float64(n*(n+1)) / 2
	for i := n - 1; i < len(values); i++ {
		weighted := 0.0
		for w := 1; w <= n; w++ {
			weighted += values[i-n+w] * float64(w)
		}
		out.values[i] = weighted / divisor
	}
	return out
}
