package stock

import (
	"github.com/markcheno/go-quote"
)

// FromQuote converts a column-oriented Quote into bars,
// ex) [Date[1, 2, 3...], Open[1, 2, 3...]...] → [[Date[1], Open[1]...], [Date[2], Open[2]...]...]
func FromQuote(q *quote.Quote, exchange string) Bars {
	if q == nil {
		return nil
	}

	bars := make(Bars, 0, len(q.Date))
	for i := 0; i < len(q.Date); i++ {
		bars = append(bars, Bar{
			Code:     q.Symbol,
			Exchange: exchange,
			Date:     Day(q.Date[i]),
			Open:     q.Open[i],
			High:     q.High[i],
			Low:      q.Low[i],
			Close:    q.Close[i],
			Volume:   q.Volume[i],
		})
	}
	return Normalize(bars)
}

// ToQuote converts bars of one instrument back to a Quote
func ToQuote(bars Bars) *quote.Quote {
	symbol := ""
	if len(bars) > 0 {
		symbol = bars[0].Code
	}

	qt := quote.NewQuote(symbol, len(bars))
	for i, bar := range bars {
		qt.Date[i] = bar.Date
		qt.Open[i] = bar.Open
		qt.High[i] = bar.High
		qt.Low[i] = bar.Low
		qt.Close[i] = bar.Close
		qt.Volume[i] = bar.Volume
	}
	return &qt
}
