package stock

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/oarkflow/errors"
	"github.com/oarkflow/search"
)

// SearchProvider serves bars from an in-memory search index.
// Rows are indexed with the same field names as the exchange csv exports.
type SearchProvider struct {
	name string
}

// NewSearchProvider indexes bars under the engine name and returns a provider over them
func NewSearchProvider(name string, bars Bars) (*SearchProvider, error) {
	engine, err := search.SetEngine[map[string]any](name, &search.Config{})
	if err != nil {
		return nil, errors.NewE(err, "unable to create search engine", "")
	}

	rows := make([]map[string]any, 0, len(bars))
	for _, bar := range bars {
		rows = append(rows, map[string]any{
			"Symbol":     bar.Code,
			"Exchange":   bar.Exchange,
			"Date":       bar.DayKey(),
			"OpenPrice":  bar.Open,
			"HighPrice":  bar.High,
			"LowPrice":   bar.Low,
			"ClosePrice": bar.Close,
			"Volume":     bar.Volume,
		})
	}
	engine.InsertWithPool(rows, runtime.NumCPU(), 1000)

	return &SearchProvider{name: name}, nil
}

// FetchBars implements Provider
func (sp *SearchProvider) FetchBars(ctx context.Context, code, exchange string, start, end time.Time) (Bars, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine, err := search.GetEngine[map[string]any](sp.name)
	if err != nil {
		return nil, errors.NewE(err, "unable to get search engine", "")
	}

	params := &search.Params{
		Query:      code,
		Properties: []string{"Symbol"},
	}
	if !start.IsZero() && !end.IsZero() {
		params.Condition = fmt.Sprintf("Date BETWEEN '%s' AND '%s'", start.Format(timeFormat), end.Format(timeFormat))
	}
	result, err := engine.Search(params)
	if err != nil {
		return nil, errors.NewE(err, "unable to search bars", "")
	}

	bars := barsFromResult[map[string]any](result, code, exchange).Between(start, end)
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

func barsFromResult[T any](result search.Result[T], code, exchange string) Bars {
	bars := Bars{}
	for _, hit := range result.Hits {
		switch row := any(hit.Data).(type) {
		case map[string]any:
			// full text matching can return neighbouring symbols
			if symbol, _ := row["Symbol"].(string); symbol != code {
				continue
			}
			ex, _ := row["Exchange"].(string)
			if exchange != "" && ex != "" && ex != exchange {
				continue
			}
			d, err := time.Parse(timeFormat, fmt.Sprint(row["Date"]))
			if err != nil {
				continue
			}
			o, _ := row["OpenPrice"].(float64)
			h, _ := row["HighPrice"].(float64)
			l, _ := row["LowPrice"].(float64)
			c, _ := row["ClosePrice"].(float64)
			v, _ := row["Volume"].(float64)

			bars = append(bars, Bar{
				Code: code, Exchange: ex, Date: Day(d),
				Open: o, High: h, Low: l, Close: c, Volume: v,
			})
		}
	}
	return Normalize(bars)
}
