package models_test

import (
	"time"

	"github.com/oarkflow/stockbt/stock"
)

var day0 = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

// barsFrom builds bars for code on consecutive days starting at offset
func barsFrom(code string, offset int, closes ...float64) stock.Bars {
	bars := make(stock.Bars, len(closes))
	for i, c := range closes {
		bars[i] = stock.Bar{
			Code:     code,
			Exchange: "NYSE",
			Date:     dayN(offset + i),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			Volume:   100,
		}
	}
	return bars
}
