package indicator_test

import (
	"math"
	"time"

	"github.com/oarkflow/stockbt/stock"
)

var start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// closesToBars builds bars whose high/low sit one unit around the close
func closesToBars(closes ...float64) stock.Bars {
	bars := make(stock.Bars, len(closes))
	for i, c := range closes {
		bars[i] = stock.Bar{
			Code:  "VOO",
			Date:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return bars
}

func hlcBars(hlc ...[3]float64) stock.Bars {
	bars := make(stock.Bars, len(hlc))
	for i, v := range hlc {
		bars[i] = stock.Bar{Code: "VOO", Date: start.AddDate(0, 0, i), High: v[0], Low: v[1], Close: v[2], Open: v[2]}
	}
	return bars
}

// waveBars is a deterministic noisy series for cross checks
func waveBars(n int) stock.Bars {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i%7) - 3
	}
	bars := closesToBars(closes...)
	for i := range bars {
		bars[i].High = bars[i].Close + 1 + float64(i%3)
		bars[i].Low = bars[i].Close - 1 - float64(i%4)
	}
	return bars
}
