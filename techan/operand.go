package techan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oarkflow/stockbt/app/models/indicator"
)

// Operand is a numeric input of a comparison, resolved per bar index.
// The set of operands is closed: PriceOperand, VolumeOperand,
// IndicatorOperand and ConstantOperand.
type Operand interface {
	// Resolve returns the operand at index, false when it has no value there
	Resolve(index int, frame *Frame) (float64, bool)
	String() string
	operand()
}

// PriceField selects one price of a bar
type PriceField int

const (
	Open PriceField = iota
	High
	Low
	Close
)

var priceNames = [...]string{Open: "open", High: "high", Low: "low", Close: "close"}

func (p PriceField) String() string {
	if p < Open || p > Close {
		return "price"
	}
	return priceNames[p]
}

// PriceOperand reads a price of the current bar
type PriceOperand struct {
	Field PriceField
}

// VolumeOperand reads the volume of the current bar
type VolumeOperand struct{}

// ConstantOperand is a literal number
type ConstantOperand struct {
	Value float64
}

// IndicatorOperand reads one field of a pre-computed indicator series
type IndicatorOperand struct {
	Kind   indicator.Kind
	Params indicator.Params
	Field  indicator.Field
}

func (PriceOperand) operand()     {}
func (VolumeOperand) operand()    {}
func (ConstantOperand) operand()  {}
func (IndicatorOperand) operand() {}

func (o PriceOperand) Resolve(index int, frame *Frame) (float64, bool) {
	bar, ok := frame.Bar(index)
	if !ok {
		return 0, false
	}
	switch o.Field {
	case Open:
		return bar.Open, true
	case High:
		return bar.High, true
	case Low:
		return bar.Low, true
	case Close:
		return bar.Close, true
	}
	return 0, false
}

func (o PriceOperand) String() string {
	return o.Field.String()
}

func (VolumeOperand) Resolve(index int, frame *Frame) (float64, bool) {
	bar, ok := frame.Bar(index)
	return bar.Volume, ok
}

func (VolumeOperand) String() string {
	return "volume"
}

func (o ConstantOperand) Resolve(int, *Frame) (float64, bool) {
	return o.Value, true
}

func (o ConstantOperand) String() string {
	return formatNumber(o.Value)
}

// Key is the series key the operand reads from
func (o IndicatorOperand) Key() indicator.Key {
	return indicator.KeyOf(o.Kind, o.Params)
}

// Resolve is unresolved when the series is missing or not yet valid at index
func (o IndicatorOperand) Resolve(index int, frame *Frame) (float64, bool) {
	series, ok := frame.Series(o.Key())
	if !ok {
		return 0, false
	}
	value, ok := series.At(index)
	if !ok {
		return 0, false
	}
	return value.Field(o.Field)
}

func (o IndicatorOperand) String() string {
	name, ok := operandNames[fieldOf{o.Kind, o.Field}]
	if !ok {
		return o.Key().String()
	}
	p := o.Params
	switch o.Kind {
	case indicator.MACD:
		return fmt.Sprintf("%s(%d,%d,%d)", name, p.Fast, p.Slow, p.Signal)
	case indicator.STOCH:
		return fmt.Sprintf("%s(%d,%d)", name, p.KPeriod, p.DPeriod)
	case indicator.BOLLINGER:
		return fmt.Sprintf("%s(%d,%s)", name, p.Period, formatNumber(p.Multiplier))
	case indicator.PIVOT:
		return name
	}
	return fmt.Sprintf("%s(%d)", name, p.Period)
}

// indicatorSyntax describes how an indicator word reads in rule text
type indicatorSyntax struct {
	kind  indicator.Kind
	field indicator.Field
	arity int
}

type fieldOf struct {
	kind  indicator.Kind
	field indicator.Field
}

var indicatorWords = map[string]indicatorSyntax{
	"SMA":              {indicator.SMA, indicator.FieldValue, 1},
	"EMA":              {indicator.EMA, indicator.FieldValue, 1},
	"WMA":              {indicator.WMA, indicator.FieldValue, 1},
	"RSI":              {indicator.RSI, indicator.FieldValue, 1},
	"ATR":              {indicator.ATR, indicator.FieldValue, 1},
	"MACD":             {indicator.MACD, indicator.FieldMACDLine, 3},
	"MACD_SIGNAL":      {indicator.MACD, indicator.FieldMACDSignal, 3},
	"MACD_HIST":        {indicator.MACD, indicator.FieldMACDHistogram, 3},
	"STOCH_K":          {indicator.STOCH, indicator.FieldK, 2},
	"STOCH_D":          {indicator.STOCH, indicator.FieldD, 2},
	"BOLLINGER_UPPER":  {indicator.BOLLINGER, indicator.FieldUpper, 2},
	"BOLLINGER_MIDDLE": {indicator.BOLLINGER, indicator.FieldMiddle, 2},
	"BOLLINGER_LOWER":  {indicator.BOLLINGER, indicator.FieldLower, 2},
	"PIVOT":            {indicator.PIVOT, indicator.FieldPivot, 0},
	"PIVOT_R1":         {indicator.PIVOT, indicator.FieldR1, 0},
	"PIVOT_R2":         {indicator.PIVOT, indicator.FieldR2, 0},
	"PIVOT_R3":         {indicator.PIVOT, indicator.FieldR3, 0},
	"PIVOT_S1":         {indicator.PIVOT, indicator.FieldS1, 0},
	"PIVOT_S2":         {indicator.PIVOT, indicator.FieldS2, 0},
	"PIVOT_S3":         {indicator.PIVOT, indicator.FieldS3, 0},
}

var operandNames = func() map[fieldOf]string {
	names := make(map[fieldOf]string, len(indicatorWords))
	for word, syntax := range indicatorWords {
		names[fieldOf{syntax.kind, syntax.field}] = word
	}
	return names
}()

var priceWords = map[string]Operand{
	"open":   PriceOperand{Field: Open},
	"high":   PriceOperand{Field: High},
	"low":    PriceOperand{Field: Low},
	"close":  PriceOperand{Field: Close},
	"volume": VolumeOperand{},
}

// formatNumber renders without exponent so the text stays inside the number grammar
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return strings.TrimSuffix(s, ".")
}

// resolve treats a nil operand as unresolved
func resolve(o Operand, index int, frame *Frame) (float64, bool) {
	if o == nil {
		return 0, false
	}
	return o.Resolve(index, frame)
}
