package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oarkflow/stockbt/stock"
	"github.com/oarkflow/stockbt/techan"
)

func TestTimelineUnion(t *testing.T) {
	assert := assert.New(t)
	d := func(n int) time.Time { return time.Date(2022, 5, n, 0, 0, 0, 0, time.UTC) }

	a := &Instrument{Code: "A", Frame: techan.NewFrame(stock.Bars{{Date: d(2)}, {Date: d(4)}, {Date: d(6)}}, nil)}
	b := &Instrument{Code: "B", Frame: techan.NewFrame(stock.Bars{{Date: d(1)}, {Date: d(4)}, {Date: d(5)}}, nil)}

	tl := newTimeline([]*Instrument{a, b})
	assert.Equal([]time.Time{d(1), d(2), d(4), d(5), d(6)}, tl.dates)

	i, ok := tl.barIndex(0, d(4))
	assert.True(ok)
	assert.Equal(1, i)
	i, ok = tl.barIndex(1, d(4))
	assert.True(ok)
	assert.Equal(1, i)
	_, ok = tl.barIndex(0, d(5))
	assert.False(ok)
}
