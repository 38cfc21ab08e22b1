package indicator

// rsi seeds the averages with the simple mean of the first n changes and
// continues with Wilder smoothing. Defined from n.
func rsi(closes []float64, n int) line {
	out := line{values: make([]float64, len(closes)), start: n}
	if n >= len(closes) {
		out.start = len(closes)
		return out
	}

	gain, loss := 0.0, 0.0
	for i := 1; i <= n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	gain /= float64(n)
	loss /= float64(n)
	out.values[n] = relativeStrength(gain, loss)

	for i := n + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		up, down := 0.0, 0.0
		if change > 0 {
			up = change
		} else {
			down = -change
		}
		gain = wilder(gain, up, n)
		loss = wilder(loss, down, n)
		out.values[i] = relativeStrength(gain, loss)
	}
	return out
}

func relativeStrength(gain, loss float64) float64 {
	if loss == 0 {
		if gain > 0 {
			return 100
		}
		return 50
	}
	return 100 - 100/(1+gain/loss)
}

// wilder applies avg = (avg*(n-1)+x)/n
func wilder(avg, x float64, n int) float64 {
	return (avg*float64(n-1) + x) / float64(n)
}
