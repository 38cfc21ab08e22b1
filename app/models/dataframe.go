package models

import (
	"context"
	"time"

	"github.com/oarkflow/errors"
	"github.com/sirupsen/logrus"

	"github.com/oarkflow/stockbt/app/models/indicator"
	"github.com/oarkflow/stockbt/stock"
	"github.com/oarkflow/stockbt/techan"
)

// Instrument is one member of the universe: its bars and the series the
// strategy reads from them
type Instrument struct {
	Code     string
	Exchange string
	Frame    *techan.Frame
}

// Bars of the instrument
func (in *Instrument) Bars() stock.Bars {
	return in.Frame.Bars
}

// PrepareInstrument normalizes bars and computes every indicator series the
// strategy's rules reference. Series sharing a key are computed once with
// the parameters first seen.
func PrepareInstrument(code, exchange string, bars stock.Bars, strategy *Strategy) (*Instrument, error) {
	if len(bars) == 0 {
		return nil, stock.ErrNoData
	}
	bars = stock.Normalize(bars)

	series := make(map[indicator.Key]*indicator.Series)
	if strategy != nil {
		for _, ref := range techan.IndicatorRefs(strategy.Rules()...) {
			s, err := indicator.Calculate(ref.Kind, bars, ref.Params)
			if err != nil {
				return nil, errors.NewE(err, "unable to calculate "+ref.Key().String()+" for "+code, "")
			}
			series[ref.Key()] = s
		}
	}

	return &Instrument{Code: code, Exchange: exchange, Frame: techan.NewFrame(bars, series)}, nil
}

// LoadInstruments fetches and prepares the universe in the given order.
// Instruments without data are skipped with a warning.
func LoadInstruments(ctx context.Context, provider stock.Provider, universe []stock.Instrument, start, end time.Time, strategy *Strategy) ([]*Instrument, error) {
	var out []*Instrument
	for _, u := range universe {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bars, err := provider.FetchBars(ctx, u.Code, u.Exchange, start, end)
		if err != nil || len(bars) == 0 {
			logrus.WithFields(logrus.Fields{"code": u.Code, "exchange": u.Exchange}).Warnf("skipping instrument: %v", noDataReason(err))
			continue
		}

		in, err := PrepareInstrument(u.Code, u.Exchange, bars, strategy)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func noDataReason(err error) error {
	if err == nil {
		return stock.ErrNoData
	}
	return err
}
