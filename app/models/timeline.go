package models

import (
	"time"

	"github.com/google/btree"

	"github.com/oarkflow/stockbt/stock"
)

// timeline is the sorted union of the instruments' dates with, per
// instrument, the bar index of each date it trades on
type timeline struct {
	dates []time.Time
	index []map[int64]int
}

func newTimeline(instruments []*Instrument) *timeline {
	tree := btree.NewG[time.Time](32, func(a, b time.Time) bool { return a.Before(b) })
	t := &timeline{index: make([]map[int64]int, len(instruments))}

	for n, in := range instruments {
		bars := in.Bars()
		t.index[n] = make(map[int64]int, len(bars))
		for i, bar := range bars {
			day := stock.Day(bar.Date)
			t.index[n][day.Unix()] = i
			tree.ReplaceOrInsert(day)
		}
	}

	t.dates = make([]time.Time, 0, tree.Len())
	tree.Ascend(func(day time.Time) bool {
		t.dates = append(t.dates, day)
		return true
	})
	return t
}

// barIndex returns the bar of instrument n on date
func (t *timeline) barIndex(n int, date time.Time) (int, bool) {
	i, ok := t.index[n][date.Unix()]
	return i, ok
}
