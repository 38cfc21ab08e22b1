package models

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Costs are the trading frictions applied on every fill
type Costs struct {
	CommissionFlat float64 `json:"commission_flat"`
	CommissionPct  float64 `json:"commission_pct"`
	SlippagePct    float64 `json:"slippage_pct"`
}

// Commission is flat + value*pct/100
func (c Costs) Commission(value float64) float64 {
	return c.CommissionFlat + value*c.CommissionPct/100
}

// fill moves price against a trader acting as side: buyers pay up, sellers receive less
func (c Costs) fill(price float64, side Direction) float64 {
	return price * (1 + float64(side)*c.SlippagePct/100)
}

// Sizing controls how much of the cash an entry commits and its exits
type Sizing struct {
	Fraction      float64
	StopLossPct   float64
	TakeProfitPct float64
	MaxPositions  int
}

// Executor applies entries, exits and stop/target triggers to a portfolio.
// Rejected operations return false and leave the portfolio untouched.
type Executor struct {
	Costs Costs
	Log   *logrus.Entry
}

// NewExecutor returns an executor logging to the standard logger
func NewExecutor(costs Costs) *Executor {
	return &Executor{Costs: costs, Log: logrus.NewEntry(logrus.StandardLogger())}
}

func (e *Executor) logger() *logrus.Entry {
	if e.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.Log
}

func (e *Executor) reject(code string, date time.Time, reason string) bool {
	e.logger().WithFields(logrus.Fields{
		"code": code,
		"date": date.Format("2006-01-02"),
	}).Debugf("order rejected: %s", reason)
	return false
}

// EnterLong buys at price plus slippage
func (e *Executor) EnterLong(p *Portfolio, code, exchange string, price float64, date time.Time, s Sizing) bool {
	return e.enter(p, code, exchange, price, date, s, Long)
}

// EnterShort sells at price minus slippage
func (e *Executor) EnterShort(p *Portfolio, code, exchange string, price float64, date time.Time, s Sizing) bool {
	return e.enter(p, code, exchange, price, date, s, Short)
}

func (e *Executor) enter(p *Portfolio, code, exchange string, price float64, date time.Time, s Sizing, dir Direction) bool {
	if _, open := p.Positions[code]; open {
		return e.reject(code, date, "position already open")
	}
	if p.OpenCount() >= s.MaxPositions {
		return e.reject(code, date, "max positions reached")
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return e.reject(code, date, "invalid price")
	}

	exec := e.Costs.fill(price, dir)
	qty := math.Floor(p.Cash * s.Fraction / exec)
	if !(qty > 0) {
		return e.reject(code, date, "quantity rounds to zero")
	}
	value := qty * exec
	commission := e.Costs.Commission(value)

	if dir == Long {
		if value+commission > p.Cash {
			return e.reject(code, date, "insufficient cash")
		}
		p.Cash -= value + commission
	} else {
		if commission > p.Cash {
			return e.reject(code, date, "insufficient cash for commission")
		}
		p.Cash += value - commission
	}

	pos := &Position{
		Code:            code,
		Exchange:        exchange,
		Quantity:        float64(dir) * qty,
		EntryPrice:      exec,
		EntryDate:       date,
		EntryCommission: commission,
	}
	if s.StopLossPct > 0 {
		pos.StopLoss = exec * (1 - float64(dir)*s.StopLossPct/100)
	}
	if s.TakeProfitPct > 0 {
		pos.TakeProfit = exec * (1 + float64(dir)*s.TakeProfitPct/100)
	}
	p.Positions[code] = pos

	e.logger().WithFields(logrus.Fields{
		"code":     code,
		"date":     date.Format("2006-01-02"),
		"quantity": pos.Quantity,
		"price":    exec,
	}).Debugf("%s entered", dir)
	return true
}

// ExitPosition closes the position on code. Longs sell with downward slippage,
// shorts buy back with upward slippage.
func (e *Executor) ExitPosition(p *Portfolio, code string, price float64, date time.Time) bool {
	pos, ok := p.Positions[code]
	if !ok {
		return e.reject(code, date, "no position to exit")
	}

	dir := pos.Direction()
	exec := e.Costs.fill(price, -dir)
	qty := math.Abs(pos.Quantity)
	value := qty * exec
	commission := e.Costs.Commission(value)
	entryCommission := e.Costs.Commission(qty * pos.EntryPrice)
	pnl := pos.Quantity*(exec-pos.EntryPrice) - entryCommission - commission

	if dir == Long {
		p.Cash += value - commission
	} else {
		p.Cash -= value + commission
	}

	p.Trades = append(p.Trades, ClosedTrade{
		Code:            pos.Code,
		Exchange:        pos.Exchange,
		Direction:       dir,
		Quantity:        pos.Quantity,
		EntryPrice:      pos.EntryPrice,
		EntryDate:       pos.EntryDate,
		ExitPrice:       exec,
		ExitDate:        date,
		EntryCommission: entryCommission,
		ExitCommission:  commission,
		PnL:             pnl,
	})
	delete(p.Positions, code)

	e.logger().WithFields(logrus.Fields{
		"code": code,
		"date": date.Format("2006-01-02"),
		"pnl":  pnl,
	}).Debugf("%s exited", dir)
	return true
}

// CheckTriggers exits every position whose price reached its stop or target
// and returns how many were closed. Codes without a price are skipped.
func (e *Executor) CheckTriggers(p *Portfolio, prices map[string]float64, date time.Time) int {
	var hit []string
	for code, pos := range p.Positions {
		price, ok := prices[code]
		if ok && triggered(pos, price) {
			hit = append(hit, code)
		}
	}
	sort.Strings(hit)

	closed := 0
	for _, code := range hit {
		e.logger().WithFields(logrus.Fields{"code": code, "price": prices[code]}).Debug("stop/target triggered")
		if e.ExitPosition(p, code, prices[code], date) {
			closed++
		}
	}
	return closed
}

func triggered(pos *Position, price float64) bool {
	if pos.Direction() == Long {
		return pos.StopLoss > 0 && price <= pos.StopLoss ||
			pos.TakeProfit > 0 && price >= pos.TakeProfit
	}
	return pos.StopLoss > 0 && price >= pos.StopLoss ||
		pos.TakeProfit > 0 && price <= pos.TakeProfit
}

// TotalEquity is cash + Σ|qty|*price; positions without a price contribute 0
func (e *Executor) TotalEquity(p *Portfolio, prices map[string]float64) float64 {
	return p.Cash + p.MarketValue(prices)
}
