package indicator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/stockbt/app/models/indicator"
	"github.com/oarkflow/stockbt/stock"
)

var allKeys = []indicator.Key{
	indicator.KeyOf(indicator.SMA, indicator.Params{Period: 5}),
	indicator.KeyOf(indicator.EMA, indicator.Params{Period: 5}),
	indicator.KeyOf(indicator.WMA, indicator.Params{Period: 5}),
	indicator.KeyOf(indicator.RSI, indicator.Params{Period: 5}),
	indicator.KeyOf(indicator.MACD, indicator.Params{Fast: 3, Slow: 7, Signal: 3}),
	indicator.KeyOf(indicator.STOCH, indicator.Params{KPeriod: 5, DPeriod: 3}),
	indicator.KeyOf(indicator.BOLLINGER, indicator.Params{Period: 5, Multiplier: 2}),
	indicator.KeyOf(indicator.ATR, indicator.Params{Period: 5}),
	indicator.KeyOf(indicator.PIVOT, indicator.Params{}),
}

func TestCanonicalKeys(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("SMA_20", indicator.KeyOf(indicator.SMA, indicator.Params{Period: 20}).String())
	assert.Equal("EMA_9", indicator.KeyOf(indicator.EMA, indicator.Params{Period: 9}).String())
	assert.Equal("MACD_12_26_9", indicator.KeyOf(indicator.MACD, indicator.Params{Fast: 12, Slow: 26, Signal: 9}).String())
	assert.Equal("BOLLINGER_20_200", indicator.KeyOf(indicator.BOLLINGER, indicator.Params{Period: 20, Multiplier: 2}).String())
	assert.Equal("BOLLINGER_20_250", indicator.KeyOf(indicator.BOLLINGER, indicator.Params{Period: 20, Multiplier: 2.5}).String())
	assert.Equal("STOCH_14_3", indicator.KeyOf(indicator.STOCH, indicator.Params{KPeriod: 14, DPeriod: 3}).String())
	assert.Equal("PIVOT", indicator.KeyOf(indicator.PIVOT, indicator.Params{Period: 3}).String())

	key := indicator.KeyOf(indicator.BOLLINGER, indicator.Params{Period: 20, Multiplier: 1.5})
	assert.Equal(indicator.Params{Period: 20, Multiplier: 1.5}, key.Params())
}

func TestCalculateErrors(t *testing.T) {
	assert := assert.New(t)
	bars := closesToBars(1, 2, 3)

	_, err := indicator.Calculate(indicator.SMA, nil, indicator.Params{Period: 3})
	assert.ErrorIs(err, indicator.ErrNoBars)

	_, err = indicator.Calculate(indicator.SMA, stock.Bars{}, indicator.Params{Period: 3})
	assert.ErrorIs(err, indicator.ErrNoBars)

	_, err = indicator.Calculate(indicator.SMA, bars, indicator.Params{Period: 0})
	assert.ErrorIs(err, indicator.ErrInvalidPeriod)

	_, err = indicator.Calculate(indicator.MACD, bars, indicator.Params{Fast: 3, Slow: -1, Signal: 2})
	assert.ErrorIs(err, indicator.ErrInvalidPeriod)

	_, err = indicator.Calculate(indicator.Kind(99), bars, indicator.Params{Period: 3})
	assert.ErrorIs(err, indicator.ErrUnknownKind)

	series, err := indicator.Calculate(indicator.PIVOT, bars, indicator.Params{})
	assert.NoError(err)
	assert.Equal(3, series.Len())
}

func TestWarmUpIsMonotonic(t *testing.T) {
	bars := waveBars(45)

	for _, key := range allKeys {
		series, err := indicator.Calculate(key.Kind, bars, key.Params())
		require.NoError(t, err)
		assert.Equal(t, len(bars), series.Len(), key.String())

		first := series.FirstValid()
		require.GreaterOrEqual(t, first, 0, key.String())
		for i := first; i < series.Len(); i++ {
			assert.True(t, series.Values[i].Valid, "%s invalid at %d after warm-up", key, i)
		}
		for i := 0; i < first; i++ {
			assert.NotNil(t, series.Values[i].Payload, "%s placeholder at %d", key, i)
		}
	}
}

func TestCalculateAll(t *testing.T) {
	assert := assert.New(t)
	bars := waveBars(20)

	keyed, err := indicator.CalculateAll(bars, append(allKeys, allKeys[0])...)
	require.NoError(t, err)
	assert.Len(keyed, len(allKeys))
	for key, series := range keyed {
		assert.Equal(key, series.Key())
	}

	_, err = indicator.CalculateAll(bars, indicator.Key{Kind: indicator.SMA})
	assert.Error(err)
}

func TestSeriesAt(t *testing.T) {
	series, err := indicator.Calculate(indicator.SMA, closesToBars(1, 2), indicator.Params{Period: 1})
	require.NoError(t, err)

	_, ok := series.At(2)
	assert.False(t, ok)
	_, ok = series.At(-1)
	assert.False(t, ok)
	v, ok := series.At(1)
	assert.True(t, ok)
	assert.True(t, v.Valid)

	var missing *indicator.Series
	_, ok = missing.At(0)
	assert.False(t, ok)
}
