package models

import (
	"context"
	"time"

	"github.com/oarkflow/errors"
	"gorm.io/gorm"

	"github.com/oarkflow/stockbt/stock"
)

// Candle is a daily bar row; Time is the unix time of the day in milliseconds
type Candle struct {
	ID       int     `json:"-"`
	Code     string  `gorm:"index:idx_candles_code_time,priority:1" json:"code"`
	Exchange string  `json:"exchange"`
	Time     int64   `gorm:"index:idx_candles_code_time,priority:2" json:"time"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// Candles is slice of Candle
type Candles []Candle

// NewCandles converts bars to rows
func NewCandles(bars stock.Bars) Candles {
	candles := make(Candles, len(bars))
	for i, bar := range bars {
		candles[i] = Candle{
			Code:     bar.Code,
			Exchange: bar.Exchange,
			Time:     stock.Day(bar.Date).UnixMilli(),
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			Volume:   bar.Volume,
		}
	}
	return candles
}

// Bars converts rows back to bars in row order
func (cs Candles) Bars() stock.Bars {
	bars := make(stock.Bars, len(cs))
	for i, c := range cs {
		bars[i] = stock.Bar{
			Code:     c.Code,
			Exchange: c.Exchange,
			Date:     time.UnixMilli(c.Time).UTC(),
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			Volume:   c.Volume,
		}
	}
	return bars
}

// CandleStore is a stock.Provider over the candles table
type CandleStore struct {
	db *gorm.DB
}

// NewCandleStore returns a store on db
func NewCandleStore(db *gorm.DB) *CandleStore {
	return &CandleStore{db: db}
}

// Save replaces the stored rows of each instrument over the date span of bars
func (s *CandleStore) Save(ctx context.Context, bars stock.Bars) error {
	byInstrument := make(map[stock.Instrument]stock.Bars)
	for _, bar := range bars {
		key := stock.Instrument{Code: bar.Code, Exchange: bar.Exchange}
		byInstrument[key] = append(byInstrument[key], bar)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for in, group := range byInstrument {
			group = stock.Normalize(group)
			candles := NewCandles(group)
			first, last := candles[0].Time, candles[len(candles)-1].Time
			if err := tx.Where("code = ? AND exchange = ? AND time BETWEEN ? AND ?", in.Code, in.Exchange, first, last).
				Delete(&Candle{}).Error; err != nil {
				return errors.NewE(err, "unable to replace candles of "+in.Code, "")
			}
			if err := tx.CreateInBatches(candles, 500).Error; err != nil {
				return errors.NewE(err, "unable to create candles of "+in.Code, "")
			}
		}
		return nil
	})
}

// FetchBars implements stock.Provider. An empty exchange matches any;
// zero start or end leaves that side open.
func (s *CandleStore) FetchBars(ctx context.Context, code, exchange string, start, end time.Time) (stock.Bars, error) {
	query := s.db.WithContext(ctx).Where("code = ?", code)
	if exchange != "" {
		query = query.Where("exchange = ?", exchange)
	}
	if !start.IsZero() {
		query = query.Where("time >= ?", stock.Day(start).UnixMilli())
	}
	if !end.IsZero() {
		query = query.Where("time <= ?", stock.Day(end).UnixMilli())
	}

	var candles Candles
	if err := query.Order("time asc").Find(&candles).Error; err != nil {
		return nil, errors.NewE(err, "unable to query candles of "+code, "")
	}
	if len(candles) == 0 {
		return nil, stock.ErrNoData
	}
	return candles.Bars(), nil
}

// Codes lists the stored instrument codes
func (s *CandleStore) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).Model(&Candle{}).Distinct("code").Order("code").Pluck("code", &codes).Error
	return codes, err
}

// LastCandleTime returns the time of the last candle of code
func (s *CandleStore) LastCandleTime(ctx context.Context, code string) (time.Time, error) {
	var candle Candle
	if err := s.db.WithContext(ctx).Where("code = ?", code).Order("time desc").First(&candle).Error; err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(candle.Time).UTC(), nil
}

// DeleteAll deletes all data of "candles" table
func (s *CandleStore) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Candle{}).Error
}
