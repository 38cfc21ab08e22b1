package indicator

// macd returns line = EMA(fast)-EMA(slow) with an SMA-seeded EMA signal of the line.
// A value is valid from the line start; signal and histogram resolve once the signal exists.
func macd(closes []float64, fast, slow, signal int) []Value {
	fastEma := ema(closes, fast, 0)
	slowEma := ema(closes, slow, 0)

	lineStart := fastEma.start
	if slowEma.start > lineStart {
		lineStart = slowEma.start
	}

	macdLine := line{values: make([]float64, len(closes)), start: lineStart}
	for i := lineStart; i < len(closes); i++ {
		macdLine.values[i] = fastEma.values[i] - slowEma.values[i]
	}
	signalLine := ema(macdLine.values, signal, lineStart)

	out := make([]Value, len(closes))
	for i := range closes {
		v := MACDValue{}
		if macdLine.defined(i) {
			v.Line = macdLine.values[i]
		}
		if signalLine.defined(i) {
			v.Signal = signalLine.values[i]
			v.Histogram = v.Line - v.Signal
			v.HasSignal = true
		}
		out[i] = Value{Valid: macdLine.defined(i), Payload: v}
	}
	return out
}
