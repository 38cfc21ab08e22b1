package indicator

// Kind names an indicator algorithm
type Kind int

const (
	// SMA is the simple moving average of closes
	SMA Kind = iota + 1
	// EMA is the SMA-seeded exponential moving average of closes
	EMA
	// WMA is the linearly weighted moving average of closes
	WMA
	// RSI is Wilder's relative strength index
	RSI
	// MACD is moving average convergence divergence
	MACD
	// STOCH is the stochastic oscillator (%K, %D)
	STOCH
	// BOLLINGER is Bollinger bands over the SMA
	BOLLINGER
	// ATR is Wilder's average true range
	ATR
	// PIVOT is classic floor pivots from the previous bar
	PIVOT
)

var kindNames = map[Kind]string{
	SMA:       "SMA",
	EMA:       "EMA",
	WMA:       "WMA",
	RSI:       "RSI",
	MACD:      "MACD",
	STOCH:     "STOCH",
	BOLLINGER: "BOLLINGER",
	ATR:       "ATR",
	PIVOT:     "PIVOT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Field selects one number out of an indicator value
type Field int

const (
	// FieldValue is the value of single-number indicators
	FieldValue Field = iota
	FieldMACDLine
	FieldMACDSignal
	FieldMACDHistogram
	FieldK
	FieldD
	FieldUpper
	FieldMiddle
	FieldLower
	FieldPivot
	FieldR1
	FieldR2
	FieldR3
	FieldS1
	FieldS2
	FieldS3
)
