package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/stockbt/app/models"
	"github.com/oarkflow/stockbt/config"
)

func TestNewStrategyValidates(t *testing.T) {
	assert := assert.New(t)
	valid := models.StrategyConfig{EntryLong: "ABOVE(close, 1)", ExitLong: "BELOW(close, 1)", PositionSize: 1, MaxPositions: 1}

	s, err := models.NewStrategy(valid)
	require.NoError(t, err)
	assert.Len(s.Rules(), 2)
	assert.Nil(s.EntryShort)

	missing := valid
	missing.ExitLong = ""
	_, err = models.NewStrategy(missing)
	assert.ErrorIs(err, models.ErrMissingRule)

	for _, bad := range []models.StrategyConfig{
		{EntryLong: valid.EntryLong, ExitLong: valid.ExitLong, PositionSize: 0, MaxPositions: 1},
		{EntryLong: valid.EntryLong, ExitLong: valid.ExitLong, PositionSize: 1.5, MaxPositions: 1},
		{EntryLong: valid.EntryLong, ExitLong: valid.ExitLong, PositionSize: 1, MaxPositions: 0},
		{EntryLong: valid.EntryLong, ExitLong: valid.ExitLong, PositionSize: 1, MaxPositions: 1, StopLossPct: -1},
	} {
		_, err = models.NewStrategy(bad)
		assert.ErrorIs(err, models.ErrInvalidSizing)
	}

	shortOnly := valid
	shortOnly.AllowShort = true
	shortOnly.EntryShort = "BELOW(close, 1)"
	_, err = models.NewStrategy(shortOnly)
	assert.ErrorIs(err, models.ErrMissingShortExit)

	// short rules are ignored without allow_short, so a lone entry is fine
	shortOnly.AllowShort = false
	_, err = models.NewStrategy(shortOnly)
	assert.NoError(err)

	broken := valid
	broken.EntryShort = "ABOVE(close"
	s, err = models.NewStrategy(broken)
	assert.Nil(s)
	assert.Error(err)
}

func TestStrategyFromConfig(t *testing.T) {
	assert := assert.New(t)

	conf, err := config.Load([]byte(`
[backtest]
initial_capital = 50000
commission_flat = 1.5
slippage_pct = 0.05
allow_short = yes
start = 2022-01-03

[strategy]
name = macd
entry_long = CROSS_ABOVE(MACD(12,26,9), MACD_SIGNAL(12,26,9))
exit_long = CROSS_BELOW(MACD(12,26,9), MACD_SIGNAL(12,26,9))
entry_short = CROSS_BELOW(close, BOLLINGER_LOWER(20,2))
exit_short = ABOVE(close, BOLLINGER_MIDDLE(20,2))
position_size = 0.25
stop_loss_pct = 5
max_positions = 3
`))
	require.NoError(t, err)

	s, err := models.StrategyFromConfig(conf)
	require.NoError(t, err)
	assert.Equal("macd", s.Name)
	assert.True(s.AllowShort)
	assert.Len(s.Rules(), 4)
	assert.Equal(models.Sizing{Fraction: 0.25, StopLossPct: 5, MaxPositions: 3}, s.Sizing())

	settings := models.SettingsFrom(conf)
	assert.Equal(50000.0, settings.InitialCapital)
	assert.Equal(models.Costs{CommissionFlat: 1.5, SlippagePct: 0.05}, settings.Costs)
	assert.Equal(dayN(0), settings.Start)
	assert.True(settings.End.IsZero())

	defaults := models.SettingsFrom(config.Empty())
	assert.Equal(100000.0, defaults.InitialCapital)
	assert.Equal(time.Time{}, defaults.Start)

	_, err = models.StrategyFromConfig(config.Empty())
	assert.ErrorIs(err, models.ErrMissingRule)
}
