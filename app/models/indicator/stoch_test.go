package indicator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/stockbt/app/models/indicator"
)

func TestStochastic(t *testing.T) {
	assert := assert.New(t)

	bars := hlcBars(
		[3]float64{10, 8, 9},
		[3]float64{12, 9, 11},
		[3]float64{13, 10, 12},
		[3]float64{11, 7, 8},
		[3]float64{9, 9, 9},
	)
	series, err := indicator.Calculate(indicator.STOCH, bars, indicator.Params{KPeriod: 3, DPeriod: 2})
	require.NoError(t, err)

	// %K at 2: (12-8)/(13-8); at 3: (8-7)/(13-7); at 4: (9-7)/(13-7)
	k2, k3, k4 := 100*4.0/5, 100*1.0/6, 100*2.0/6
	assert.Equal(2, series.FirstValid())
	k, ok := series.Values[2].Field(indicator.FieldK)
	assert.True(ok)
	assert.InDelta(k2, k, 1e-9)
	_, ok = series.Values[2].Field(indicator.FieldD)
	assert.False(ok, "%D needs two %K samples")

	k, _ = series.Values[3].Field(indicator.FieldK)
	d, ok := series.Values[3].Field(indicator.FieldD)
	assert.True(ok)
	assert.InDelta(k3, k, 1e-9)
	assert.InDelta((k2+k3)/2, d, 1e-9)

	d, _ = series.Values[4].Field(indicator.FieldD)
	assert.InDelta((k3+k4)/2, d, 1e-9)
}

func TestStochasticFlatRange(t *testing.T) {
	bars := hlcBars([3]float64{5, 5, 5}, [3]float64{5, 5, 5}, [3]float64{5, 5, 5})

	series, err := indicator.Calculate(indicator.STOCH, bars, indicator.Params{KPeriod: 2, DPeriod: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 50}, series.Floats(indicator.FieldK)[1:])
}
