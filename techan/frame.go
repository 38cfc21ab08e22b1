package techan

import (
	"github.com/oarkflow/stockbt/app/models/indicator"
	"github.com/oarkflow/stockbt/stock"
)

// Frame is the read-only input rules are evaluated against: one instrument's
// bars and the indicator series computed over them.
type Frame struct {
	Bars       stock.Bars
	Indicators map[indicator.Key]*indicator.Series
}

// NewFrame returns a frame over bars and indicators
func NewFrame(bars stock.Bars, indicators map[indicator.Key]*indicator.Series) *Frame {
	return &Frame{Bars: bars, Indicators: indicators}
}

// Len returns the number of bars, 0 for a nil frame
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Bars)
}

// Bar returns the bar at index, false when out of range
func (f *Frame) Bar(index int) (stock.Bar, bool) {
	if index < 0 || index >= f.Len() {
		return stock.Bar{}, false
	}
	return f.Bars[index], true
}

// Series looks up the series stored under key
func (f *Frame) Series(key indicator.Key) (*indicator.Series, bool) {
	if f == nil || f.Indicators == nil {
		return nil, false
	}
	s, ok := f.Indicators[key]
	return s, ok && s != nil
}

// Evaluate reports whether rule holds at index. Nil rules and indices
// outside the bars are false.
func (f *Frame) Evaluate(rule Rule, index int) bool {
	if index < 0 || index >= f.Len() {
		return false
	}
	return satisfied(rule, index, f)
}

// Evaluate is a shorthand for NewFrame(bars, indicators).Evaluate(rule, index)
func Evaluate(rule Rule, bars stock.Bars, indicators map[indicator.Key]*indicator.Series, index int) bool {
	return NewFrame(bars, indicators).Evaluate(rule, index)
}
