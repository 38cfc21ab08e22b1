package indicator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/stockbt/app/models/indicator"
)

func TestRsiFirstValue(t *testing.T) {
	assert := assert.New(t)

	series, err := indicator.Calculate(indicator.RSI, closesToBars(10, 12, 11, 13, 12, 14), indicator.Params{Period: 3})
	require.NoError(t, err)

	assert.Equal(3, series.FirstValid())
	v, ok := series.Values[3].Field(indicator.FieldValue)
	assert.True(ok)
	assert.InDelta(80.0, v, 1e-9)

	// index 4: change -1 -> gain=(4/3*2)/3, loss=(1/3*2+1)/3
	gain, loss := (4.0/3*2)/3, (1.0/3*2+1)/3
	v, _ = series.Values[4].Field(indicator.FieldValue)
	assert.InDelta(100-100/(1+gain/loss), v, 1e-9)
}

func TestRsiEdges(t *testing.T) {
	assert := assert.New(t)

	up, err := indicator.Calculate(indicator.RSI, closesToBars(1, 2, 3, 4, 5), indicator.Params{Period: 2})
	require.NoError(t, err)
	for _, v := range up.Floats(indicator.FieldValue)[2:] {
		assert.Equal(100.0, v)
	}

	flat, err := indicator.Calculate(indicator.RSI, closesToBars(5, 5, 5, 5), indicator.Params{Period: 2})
	require.NoError(t, err)
	for _, v := range flat.Floats(indicator.FieldValue)[2:] {
		assert.Equal(50.0, v)
	}

	down, err := indicator.Calculate(indicator.RSI, closesToBars(5, 4, 3, 2), indicator.Params{Period: 2})
	require.NoError(t, err)
	for _, v := range down.Floats(indicator.FieldValue)[2:] {
		assert.Equal(0.0, v)
	}

	// needs n+1 closes for the first value
	short, err := indicator.Calculate(indicator.RSI, closesToBars(1, 2, 3), indicator.Params{Period: 3})
	require.NoError(t, err)
	assert.Equal(-1, short.FirstValid())
}
