package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/stockbt/config"
)

const vooCSV = `date,open,high,low,close,volume
2022-01-03,10,11,9,10,100
2022-01-04,12,13,11,12,100
2022-01-05,9,10,8,9,100
2022-01-06,9,10,8,9,100
2022-01-07,13,14,12,13,100
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewProvider(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "VOO.csv"), vooCSV)

	provider, err := newProvider("csv", dir)
	require.NoError(t, err)
	bars, err := provider.FetchBars(context.Background(), "VOO", "", time.Time{}, time.Time{})
	assert.NoError(err)
	assert.Equal([]float64{10, 12, 9, 9, 13}, bars.Closes())

	provider, err = newProvider("sqlite", filepath.Join(dir, "bars.sqlite3"))
	assert.NoError(err)
	assert.NotNil(provider)

	_, err = newProvider("parquet", dir)
	assert.Error(err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	writeFile(t, filepath.Join(data, "VOO.csv"), vooCSV)

	ini := filepath.Join(dir, "config.ini")
	writeFile(t, ini, `[data]
driver = csv
path = `+data+`

[log]
level = error

[universe]
instruments = VOO

[backtest]
initial_capital = 1000

[strategy]
name = cross
entry_long = CROSS_ABOVE(close, 11)
exit_long = CROSS_BELOW(close, 11)
`)

	require.NoError(t, newApp().Run([]string{"stockbt", "run", "--config", ini}))
	assert.Equal(t, "csv", config.Config.DataDriver)
	assert.Equal(t, []string{"VOO"}, config.Config.Instruments)
}

func TestRunCommandRejectsStrategy(t *testing.T) {
	ini := filepath.Join(t.TempDir(), "config.ini")
	writeFile(t, ini, "[log]\nlevel = error\n\n[strategy]\nentry_long = ABOVE(close, 1)\n")

	assert.Error(t, newApp().Run([]string{"stockbt", "run", "--config", ini}))
}
