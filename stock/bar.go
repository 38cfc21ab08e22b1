package stock

import (
	"sort"
	"time"
)

const timeFormat = "2006-01-02"

// Bar is one daily OHLCV record for one instrument
type Bar struct {
	Code     string    `json:"code"`
	Exchange string    `json:"exchange"`
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Day truncates t to day resolution in UTC, the resolution bars are keyed by
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey returns the yyyy-mm-dd form of the bar date
func (b Bar) DayKey() string {
	return b.Date.Format(timeFormat)
}

// Bars is an ordered sequence of bars of a single instrument
type Bars []Bar

// Len returns the number of bars
func (bs Bars) Len() int {
	return len(bs)
}

// Opens is open prices of bars
func (bs Bars) Opens() []float64 {
	open := make([]float64, len(bs))
	for i, bar := range bs {
		open[i] = bar.Open
	}
	return open
}

// Highs is high prices of bars
func (bs Bars) Highs() []float64 {
	high := make([]float64, len(bs))
	for i, bar := range bs {
		high[i] = bar.High
	}
	return high
}

// Lows is low prices of bars
func (bs Bars) Lows() []float64 {
	low := make([]float64, len(bs))
	for i, bar := range bs {
		low[i] = bar.Low
	}
	return low
}

// Closes is close prices of bars
func (bs Bars) Closes() []float64 {
	close := make([]float64, len(bs))
	for i, bar := range bs {
		close[i] = bar.Close
	}
	return close
}

// Volumes is volumes of bars
func (bs Bars) Volumes() []float64 {
	volume := make([]float64, len(bs))
	for i, bar := range bs {
		volume[i] = bar.Volume
	}
	return volume
}

// Dates returns the bar dates in order
func (bs Bars) Dates() []time.Time {
	dates := make([]time.Time, len(bs))
	for i, bar := range bs {
		dates[i] = bar.Date
	}
	return dates
}

// Between returns the bars whose date lies in [start, end].
// A zero start or end leaves that side open.
func (bs Bars) Between(start, end time.Time) Bars {
	out := Bars{}
	for _, bar := range bs {
		if !start.IsZero() && bar.Date.Before(Day(start)) {
			continue
		}
		if !end.IsZero() && bar.Date.After(Day(end)) {
			continue
		}
		out = append(out, bar)
	}
	return out
}

// Normalize sorts bars by date and drops repeated dates, keeping the last one seen
func Normalize(bs Bars) Bars {
	if len(bs) == 0 {
		return bs
	}
	sorted := make(Bars, len(bs))
	copy(sorted, bs)
	for i := range sorted {
		sorted[i].Date = Day(sorted[i].Date)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := sorted[:0]
	for _, bar := range sorted {
		if len(out) > 0 && out[len(out)-1].Date.Equal(bar.Date) {
			out[len(out)-1] = bar
			continue
		}
		out = append(out, bar)
	}
	return out
}
