package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/oarkflow/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/stockbt/app/models"
	"github.com/oarkflow/stockbt/app/server"
	"github.com/oarkflow/stockbt/config"
	"github.com/oarkflow/stockbt/log"
	"github.com/oarkflow/stockbt/stock"
)

var configPath string

var configFlag = &cli.StringFlag{
	Name:        "config",
	Aliases:     []string{"c"},
	Value:       "config.ini",
	Usage:       "the ini file to read settings from",
	Destination: &configPath,
}

func setup() {
	config.InitConfig(configPath)
	log.SetLogging(config.Config.LogLevel)
}

// newProvider opens the bar source named by the [data] section
func newProvider(driver, path string) (stock.Provider, error) {
	switch driver {
	case "csv":
		mem, err := stock.LoadCSVDir(path, "")
		if err != nil {
			return nil, err
		}
		return mem, nil
	case "sqlite":
		db, err := models.OpenDB(path)
		if err != nil {
			return nil, err
		}
		return models.NewCandleStore(db), nil
	case "search":
		mem, err := stock.LoadCSVDir(path, "")
		if err != nil {
			return nil, err
		}
		sp, err := stock.NewSearchProvider("stock", mem.All())
		if err != nil {
			return nil, err
		}
		return sp, nil
	}
	return nil, errors.New(fmt.Sprintf("unknown data driver %q", driver))
}

var runCommand = &cli.Command{
	Name:   "run",
	Usage:  "run the configured strategy over the configured universe",
	Flags:  []cli.Flag{configFlag},
	Action: runBacktest,
}

func runBacktest(c *cli.Context) error {
	setup()

	strategy, err := models.StrategyFromConfig(config.Config.File)
	if err != nil {
		return err
	}
	settings := models.SettingsFrom(config.Config.File)

	provider, err := newProvider(config.Config.DataDriver, config.Config.DataPath)
	if err != nil {
		return err
	}
	universe := stock.ParseInstruments(strings.Join(config.Config.Instruments, ","))
	instruments, err := models.LoadInstruments(c.Context, provider, universe, settings.Start, settings.End, strategy)
	if err != nil {
		return err
	}

	bt := &models.Backtest{Strategy: strategy, Settings: settings}
	result, err := bt.Run(c.Context, instruments)
	if err != nil {
		return err
	}

	p := result.Portfolio
	entry := logrus.WithField("run_id", result.RunID)
	for _, s := range p.Summaries() {
		entry.WithFields(logrus.Fields{
			"code":   s.Code,
			"trades": s.Trades,
			"wins":   s.Wins,
			"losses": s.Losses,
			"pnl":    s.RealizedPnL,
		}).Info("instrument summary")
	}
	for _, code := range p.Codes() {
		pos, _ := p.Position(code)
		entry.WithFields(logrus.Fields{
			"code":     code,
			"quantity": pos.Quantity,
			"entry":    pos.EntryPrice,
		}).Info("open position")
	}
	entry.WithFields(logrus.Fields{
		"strategy":     result.Strategy,
		"start":        result.Start.Format("2006-01-02"),
		"end":          result.End.Format("2006-01-02"),
		"trades":       len(p.Trades),
		"wins":         len(p.WinningTrades()),
		"losses":       len(p.LosingTrades()),
		"final_equity": result.FinalEquity(),
	}).Info("backtest finished")
	return nil
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "serve candles and backtests over http from the sqlite store",
	Flags: []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		setup()
		if err := models.InitDB(); err != nil {
			return err
		}
		return server.New(models.NewCandleStore(models.DB)).Run()
	},
}

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "load csv bars into the sqlite store",
	ArgsUsage: "<csv directory>",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{Name: "exchange", Usage: "exchange to stamp on bars without one"},
	},
	Action: func(c *cli.Context) error {
		setup()
		dir := c.Args().First()
		if dir == "" {
			dir = config.Config.DataPath
		}
		mem, err := stock.LoadCSVDir(dir, c.String("exchange"))
		if err != nil {
			return err
		}
		if err := models.InitDB(); err != nil {
			return err
		}
		bars := mem.All()
		if err := models.NewCandleStore(models.DB).Save(c.Context, bars); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"codes": len(mem.Codes()), "bars": len(bars)}).Info("imported candles")
		return nil
	},
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "stockbt"
	app.Usage = "rule based backtesting over daily bars"
	app.Commands = []*cli.Command{
		runCommand,
		serveCommand,
		importCommand,
	}
	return app
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logrus.Fatal(err)
	}
}
