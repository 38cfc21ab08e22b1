package indicator

// pivots derives floor pivots from the previous bar; bar 0 is invalid
func pivots(highs, lows, closes []float64) []Value {
	out := make([]Value, len(closes))
	out[0] = Value{Payload: PivotValue{}}

	for i := 1; i < len(closes); i++ {
		h, l, c := highs[i-1], lows[i-1], closes[i-1]
		p := (h + l + c) / 3
		out[i] = Value{Valid: true, Payload: PivotValue{
			Pivot: p,
			R1:    2*p - l,
			R2:    p + (h - l),
			R3:    h + 2*(p-l),
			S1:    2*p - h,
			S2:    p - (h - l),
			S3:    l - 2*(h-p),
		}}
	}
	return out
}
