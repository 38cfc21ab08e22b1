package models

import (
	"context"
	"time"

	"github.com/oarkflow/errors"
	"github.com/oarkflow/xid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoStrategy is returned by Run without a strategy
	ErrNoStrategy = errors.New("backtest needs a strategy")
	// ErrNoInstruments is returned by Run with an empty universe
	ErrNoInstruments = errors.New("backtest needs at least one instrument")
)

// Settings are the run-wide parameters
type Settings struct {
	InitialCapital float64   `json:"initial_capital"`
	Costs          Costs     `json:"costs"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
}

// SettingsFrom reads the [backtest] section
func SettingsFrom(conf Getter) Settings {
	return Settings{
		InitialCapital: conf.GetDouble("backtest", "initial_capital", 100000),
		Costs: Costs{
			CommissionFlat: conf.GetDouble("backtest", "commission_flat", 0),
			CommissionPct:  conf.GetDouble("backtest", "commission_pct", 0),
			SlippagePct:    conf.GetDouble("backtest", "slippage_pct", 0),
		},
		Start: conf.GetDate("backtest", "start", time.Time{}),
		End:   conf.GetDate("backtest", "end", time.Time{}),
	}
}

// Result is what a run hands to its callers
type Result struct {
	RunID     string     `json:"run_id"`
	Strategy  string     `json:"strategy"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Portfolio *Portfolio `json:"portfolio"`
}

// FinalEquity is the last point of the equity curve, or the initial capital
func (r *Result) FinalEquity() float64 {
	if n := len(r.Portfolio.Equity); n > 0 {
		return r.Portfolio.Equity[n-1].Equity
	}
	return r.Portfolio.InitialCapital
}

// Backtest runs one strategy over a universe
type Backtest struct {
	Strategy *Strategy
	Settings Settings
}

type run struct {
	*Backtest
	result   *Result
	executor *Executor
	log      *logrus.Entry
	sizing   Sizing
}

// Run simulates the strategy date by date over the instruments, processed
// in the given order. Cancelling ctx stops between dates and returns the
// partial result with ctx.Err(). A bookkeeping mismatch aborts with
// ErrEquityInvariant.
//
// With several instruments, an instrument without a bar on a date keeps its
// open position marked at its latest close for that date's equity point,
// where TotalEquity alone would count it as 0. Stop and target triggers only
// see the prices of instruments trading that date.
func (bt *Backtest) Run(ctx context.Context, instruments []*Instrument) (*Result, error) {
	if bt.Strategy == nil {
		return nil, ErrNoStrategy
	}
	if len(instruments) == 0 {
		return nil, ErrNoInstruments
	}
	portfolio, err := NewPortfolio(bt.Settings.InitialCapital)
	if err != nil {
		return nil, err
	}

	id := xid.New().String()
	log := logrus.WithFields(logrus.Fields{"run_id": id, "strategy": bt.Strategy.Name})
	r := &run{
		Backtest: bt,
		result:   &Result{RunID: id, Strategy: bt.Strategy.Name, Portfolio: portfolio},
		executor: &Executor{Costs: bt.Settings.Costs, Log: log},
		log:      log,
		sizing:   bt.Strategy.Sizing(),
	}

	log.WithField("instruments", len(instruments)).Info("backtest start")
	if len(instruments) == 1 {
		err = r.single(ctx, instruments[0])
	} else {
		err = r.multi(ctx, instruments)
	}
	log.WithFields(logrus.Fields{
		"trades": len(portfolio.Trades),
		"open":   portfolio.OpenCount(),
		"equity": r.result.FinalEquity(),
	}).Info("backtest end")

	return r.result, err
}

func (r *run) single(ctx context.Context, in *Instrument) error {
	for i, bar := range in.Bars() {
		if err := ctx.Err(); err != nil {
			return err
		}
		prices := map[string]float64{in.Code: bar.Close}
		r.executor.CheckTriggers(r.result.Portfolio, prices, bar.Date)
		r.step(in, i)
		if err := r.mark(bar.Date, prices); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) multi(ctx context.Context, instruments []*Instrument) error {
	tl := newTimeline(instruments)
	latest := make(map[string]float64, len(instruments))

	for _, date := range tl.dates {
		if err := ctx.Err(); err != nil {
			return err
		}

		prices := make(map[string]float64, len(instruments))
		for n, in := range instruments {
			if i, ok := tl.barIndex(n, date); ok {
				prices[in.Code] = in.Bars()[i].Close
			}
		}
		r.executor.CheckTriggers(r.result.Portfolio, prices, date)

		for n, in := range instruments {
			if i, ok := tl.barIndex(n, date); ok {
				r.step(in, i)
			}
		}

		for code, price := range prices {
			latest[code] = price
		}
		if err := r.mark(date, latest); err != nil {
			return err
		}
	}
	return nil
}

// step runs the exit rule of an open position, or else the entry rules, at bar i
func (r *run) step(in *Instrument, i int) {
	p := r.result.Portfolio
	bar := in.Bars()[i]
	s := r.Strategy

	if pos, open := p.Position(in.Code); open {
		exit := s.ExitLong
		if pos.Direction() == Short {
			exit = s.ExitShort
		}
		if in.Frame.Evaluate(exit, i) {
			r.executor.ExitPosition(p, in.Code, bar.Close, bar.Date)
		}
		return
	}

	if in.Frame.Evaluate(s.EntryLong, i) {
		r.executor.EnterLong(p, in.Code, in.Exchange, bar.Close, bar.Date, r.sizing)
		return
	}
	if s.AllowShort && in.Frame.Evaluate(s.EntryShort, i) {
		r.executor.EnterShort(p, in.Code, in.Exchange, bar.Close, bar.Date, r.sizing)
	}
}

// mark appends the equity point of date and checks the books against it
func (r *run) mark(date time.Time, prices map[string]float64) error {
	p := r.result.Portfolio
	p.RecordEquity(date, r.executor.TotalEquity(p, prices))

	if r.result.Start.IsZero() {
		r.result.Start = date
	}
	r.result.End = date

	if err := p.VerifyEquity(prices); err != nil {
		r.log.WithField("date", date.Format("2006-01-02")).Errorf("aborting run: %v", err)
		return ErrEquityInvariant
	}
	return nil
}
