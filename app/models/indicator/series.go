package indicator

import (
	"fmt"
	"math"

	"github.com/oarkflow/errors"
)

var (
	// ErrNoBars is returned when there are no bars to calculate over
	ErrNoBars = errors.New("indicator: no bars")
	// ErrInvalidPeriod is returned for non-positive periods
	ErrInvalidPeriod = errors.New("indicator: period must be positive")
	// ErrUnknownKind is returned for an unsupported kind
	ErrUnknownKind = errors.New("indicator: unknown kind")
)

// OHLC is the price input of the engine. stock.Bars satisfies it.
type OHLC interface {
	Len() int
	Highs() []float64
	Lows() []float64
	Closes() []float64
}

// Params holds the parameters of every kind; each kind reads only its own fields.
type Params struct {
	Period     int     `json:"period,omitempty"`
	Fast       int     `json:"fast,omitempty"`
	Slow       int     `json:"slow,omitempty"`
	Signal     int     `json:"signal,omitempty"`
	KPeriod    int     `json:"k,omitempty"`
	DPeriod    int     `json:"d,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// Key identifies a computed series by kind and parameters
type Key struct {
	Kind    Kind
	A, B, C int
}

// KeyOf returns the key of kind computed with params.
// Bollinger multipliers are keyed as round(mult*100).
func KeyOf(kind Kind, params Params) Key {
	switch kind {
	case SMA, EMA, WMA, RSI, ATR:
		return Key{Kind: kind, A: params.Period}
	case MACD:
		return Key{Kind: kind, A: params.Fast, B: params.Slow, C: params.Signal}
	case STOCH:
		return Key{Kind: kind, A: params.KPeriod, B: params.DPeriod}
	case BOLLINGER:
		return Key{Kind: kind, A: params.Period, B: int(math.Round(params.Multiplier * 100))}
	}
	return Key{Kind: kind}
}

// Params recovers calculation parameters from the key
func (k Key) Params() Params {
	switch k.Kind {
	case SMA, EMA, WMA, RSI, ATR:
		return Params{Period: k.A}
	case MACD:
		return Params{Fast: k.A, Slow: k.B, Signal: k.C}
	case STOCH:
		return Params{KPeriod: k.A, DPeriod: k.B}
	case BOLLINGER:
		return Params{Period: k.A, Multiplier: float64(k.B) / 100}
	}
	return Params{}
}

// String is the canonical key, e.g. SMA_20, MACD_12_26_9, BOLLINGER_20_200, PIVOT
func (k Key) String() string {
	switch k.Kind {
	case SMA, EMA, WMA, RSI, ATR:
		return fmt.Sprintf("%s_%d", k.Kind, k.A)
	case MACD:
		return fmt.Sprintf("%s_%d_%d_%d", k.Kind, k.A, k.B, k.C)
	case STOCH, BOLLINGER:
		return fmt.Sprintf("%s_%d_%d", k.Kind, k.A, k.B)
	}
	return k.Kind.String()
}

// Payload is the kind-specific content of a Value
type Payload interface {
	Field(f Field) (float64, bool)
	payload()
}

// Scalar is the payload of single-number indicators
type Scalar float64

// MACDValue is the payload of MACD. Signal and Histogram are defined once
// HasSignal is set; the line alone is defined before that.
type MACDValue struct {
	Line      float64
	Signal    float64
	Histogram float64
	HasSignal bool
}

// StochValue is the payload of the stochastic oscillator. D is defined once HasD is set.
type StochValue struct {
	K    float64
	D    float64
	HasD bool
}

// BandsValue is the payload of Bollinger bands
type BandsValue struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// PivotValue is the payload of floor pivots
type PivotValue struct {
	Pivot      float64
	R1, R2, R3 float64
	S1, S2, S3 float64
}

func (Scalar) payload()     {}
func (MACDValue) payload()  {}
func (StochValue) payload() {}
func (BandsValue) payload() {}
func (PivotValue) payload() {}

// Field implements Payload
func (s Scalar) Field(f Field) (float64, bool) {
	return float64(s), f == FieldValue
}

// Field implements Payload
func (m MACDValue) Field(f Field) (float64, bool) {
	switch f {
	case FieldMACDLine, FieldValue:
		return m.Line, true
	case FieldMACDSignal:
		return m.Signal, m.HasSignal
	case FieldMACDHistogram:
		return m.Histogram, m.HasSignal
	}
	return 0, false
}

// Field implements Payload
func (s StochValue) Field(f Field) (float64, bool) {
	switch f {
	case FieldK, FieldValue:
		return s.K, true
	case FieldD:
		return s.D, s.HasD
	}
	return 0, false
}

// Field implements Payload
func (b BandsValue) Field(f Field) (float64, bool) {
	switch f {
	case FieldUpper:
		return b.Upper, true
	case FieldMiddle, FieldValue:
		return b.Middle, true
	case FieldLower:
		return b.Lower, true
	}
	return 0, false
}

// Field implements Payload
func (p PivotValue) Field(f Field) (float64, bool) {
	switch f {
	case FieldPivot, FieldValue:
		return p.Pivot, true
	case FieldR1:
		return p.R1, true
	case FieldR2:
		return p.R2, true
	case FieldR3:
		return p.R3, true
	case FieldS1:
		return p.S1, true
	case FieldS2:
		return p.S2, true
	case FieldS3:
		return p.S3, true
	}
	return 0, false
}

// Value is one indicator sample. Payload is set even when Valid is false,
// but it must not be read before the warm-up ends. Valid covers the primary
// field; secondary fields of MACD and stochastic warm up later and report
// their own state through Field.
type Value struct {
	Valid   bool
	Payload Payload
}

// Field extracts f, reporting false for invalid values or a field the payload lacks
func (v Value) Field(f Field) (float64, bool) {
	if !v.Valid || v.Payload == nil {
		return 0, false
	}
	return v.Payload.Field(f)
}

// Series is an indicator computed over bars, index-aligned with them
type Series struct {
	Kind   Kind
	Params Params
	Values []Value
}

// Key returns the series key
func (s *Series) Key() Key {
	return KeyOf(s.Kind, s.Params)
}

// Len returns the number of values, equal to the number of bars
func (s *Series) Len() int {
	return len(s.Values)
}

// At returns the value at index, false when out of range
func (s *Series) At(index int) (Value, bool) {
	if s == nil || index < 0 || index >= len(s.Values) {
		return Value{}, false
	}
	return s.Values[index], true
}

// FirstValid returns the first valid index or -1
func (s *Series) FirstValid() int {
	for i, v := range s.Values {
		if v.Valid {
			return i
		}
	}
	return -1
}

// Floats returns field f for each index, NaN where unresolved
func (s *Series) Floats(f Field) []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		x, ok := v.Field(f)
		if !ok {
			x = math.NaN()
		}
		out[i] = x
	}
	return out
}

// Calculate computes the series of kind over bars
func Calculate(kind Kind, bars OHLC, params Params) (*Series, error) {
	if bars == nil || bars.Len() == 0 {
		return nil, ErrNoBars
	}
	if err := validate(kind, params); err != nil {
		return nil, err
	}

	series := &Series{Kind: kind, Params: params}
	switch kind {
	case SMA:
		series.Values = scalars(sma(bars.Closes(), params.Period))
	case EMA:
		series.Values = scalars(ema(bars.Closes(), params.Period, 0))
	case WMA:
		series.Values = scalars(wma(bars.Closes(), params.Period))
	case RSI:
		series.Values = scalars(rsi(bars.Closes(), params.Period))
	case MACD:
		series.Values = macd(bars.Closes(), params.Fast, params.Slow, params.Signal)
	case STOCH:
		series.Values = stoch(bars.Highs(), bars.Lows(), bars.Closes(), params.KPeriod, params.DPeriod)
	case BOLLINGER:
		series.Values = bollinger(bars.Closes(), params.Period, params.Multiplier)
	case ATR:
		series.Values = scalars(atr(bars.Highs(), bars.Lows(), bars.Closes(), params.Period))
	case PIVOT:
		series.Values = pivots(bars.Highs(), bars.Lows(), bars.Closes())
	default:
		return nil, ErrUnknownKind
	}
	return series, nil
}

// CalculateAll computes one series per key. The first failing key aborts with no result.
func CalculateAll(bars OHLC, keys ...Key) (map[Key]*Series, error) {
	out := make(map[Key]*Series, len(keys))
	for _, key := range keys {
		if _, ok := out[key]; ok {
			continue
		}
		series, err := Calculate(key.Kind, bars, key.Params())
		if err != nil {
			return nil, errors.NewE(err, "unable to calculate "+key.String(), "")
		}
		out[key] = series
	}
	return out, nil
}

func validate(kind Kind, params Params) error {
	var periods []int
	switch kind {
	case SMA, EMA, WMA, RSI, ATR, BOLLINGER:
		periods = []int{params.Period}
	case MACD:
		periods = []int{params.Fast, params.Slow, params.Signal}
	case STOCH:
		periods = []int{params.KPeriod, params.DPeriod}
	case PIVOT:
	default:
		return ErrUnknownKind
	}
	for _, p := range periods {
		if p <= 0 {
			return ErrInvalidPeriod
		}
	}
	return nil
}

// line is a float series whose values are defined from index start on.
// start may be len(values) when nothing is defined.
type line struct {
	values []float64
	start  int
}

func (l line) defined(i int) bool {
	return i >= l.start && i < len(l.values)
}

func scalars(l line) []Value {
	out := make([]Value, len(l.values))
	for i, v := range l.values {
		out[i] = Value{Valid: l.defined(i), Payload: Scalar(v)}
	}
	return out
}
