package indicator

// stoch computes %K over a k-window and %D as the SMA(d) of %K kept in a
// circular buffer. A value is valid once %K exists; %D resolves after d samples.
func stoch(highs, lows, closes []float64, k, d int) []Value {
	out := make([]Value, len(closes))
	ring := make([]float64, d)
	samples, sum := 0, 0.0

	for i := range closes {
		v := StochValue{}
		if i < k-1 {
			out[i] = Value{Payload: v}
			continue
		}

		lowest, highest := lows[i], highs[i]
		for j := i - k + 1; j < i; j++ {
			if lows[j] < lowest {
				lowest = lows[j]
			}
			if highs[j] > highest {
				highest = highs[j]
			}
		}
		if span := highest - lowest; span == 0 {
			v.K = 50
		} else {
			v.K = 100 * (closes[i] - lowest) / span
		}

		slot := samples % d
		if samples >= d {
			sum -= ring[slot]
		}
		ring[slot] = v.K
		sum += v.K
		samples++

		if samples >= d {
			v.D = sum / float64(d)
			v.HasD = true
		}
		out[i] = Value{Valid: true, Payload: v}
	}
	return out
}
