package models

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/oarkflow/errors"
)

// equityTolerance is the allowed drift between booked and reconstructed cash
const equityTolerance = 1e-2

var (
	// ErrInvalidCapital is returned for a non-positive starting cash
	ErrInvalidCapital = errors.New("initial capital must be positive")
	// ErrEquityInvariant reports bookkeeping that no longer reconciles
	ErrEquityInvariant = errors.New("equity invariant violated")
)

// Direction is the side of a position, +1 long and -1 short
type Direction int

const (
	Long  Direction = 1
	Short Direction = -1
)

func (d Direction) String() string {
	if d == Short {
		return "SHORT"
	}
	return "LONG"
}

// MarshalText renders LONG or SHORT
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts LONG or SHORT
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "LONG":
		*d = Long
	case "SHORT":
		*d = Short
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}

// Position is an open holding; the sign of Quantity is the direction
type Position struct {
	Code            string    `json:"code"`
	Exchange        string    `json:"exchange"`
	Quantity        float64   `json:"quantity"`
	EntryPrice      float64   `json:"entry_price"`
	EntryDate       time.Time `json:"entry_date"`
	EntryCommission float64   `json:"entry_commission"`
	StopLoss        float64   `json:"stop_loss,omitempty"`
	TakeProfit      float64   `json:"take_profit,omitempty"`
}

// Direction of the position
func (p *Position) Direction() Direction {
	if p.Quantity < 0 {
		return Short
	}
	return Long
}

// ClosedTrade is a completed round trip
type ClosedTrade struct {
	Code            string    `json:"code"`
	Exchange        string    `json:"exchange"`
	Direction       Direction `json:"direction"`
	Quantity        float64   `json:"quantity"`
	EntryPrice      float64   `json:"entry_price"`
	EntryDate       time.Time `json:"entry_date"`
	ExitPrice       float64   `json:"exit_price"`
	ExitDate        time.Time `json:"exit_date"`
	EntryCommission float64   `json:"entry_commission"`
	ExitCommission  float64   `json:"exit_commission"`
	PnL             float64   `json:"pnl"`
}

// IsWin reports a strictly positive PnL. Break-even trades are losing.
func (t ClosedTrade) IsWin() bool {
	return t.PnL > 0
}

// EquityPoint is the marked equity at the end of a simulated date
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// Portfolio is the state of one run
type Portfolio struct {
	Cash           float64              `json:"cash"`
	InitialCapital float64              `json:"initial_capital"`
	Positions      map[string]*Position `json:"positions"`
	Trades         []ClosedTrade        `json:"trades"`
	Equity         []EquityPoint        `json:"equity"`
}

// NewPortfolio returns an empty portfolio holding capital in cash
func NewPortfolio(capital float64) (*Portfolio, error) {
	if capital <= 0 || math.IsNaN(capital) || math.IsInf(capital, 0) {
		return nil, ErrInvalidCapital
	}
	return &Portfolio{
		Cash:           capital,
		InitialCapital: capital,
		Positions:      make(map[string]*Position),
	}, nil
}

// OpenCount returns the number of open positions
func (p *Portfolio) OpenCount() int {
	return len(p.Positions)
}

// Position returns the open position for code
func (p *Portfolio) Position(code string) (*Position, bool) {
	pos, ok := p.Positions[code]
	return pos, ok
}

// Codes returns the codes with an open position in ascending order
func (p *Portfolio) Codes() []string {
	codes := make([]string, 0, len(p.Positions))
	for code := range p.Positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (p *Portfolio) WinningTrades() []ClosedTrade {
	return p.filterTrades(true)
}

func (p *Portfolio) LosingTrades() []ClosedTrade {
	return p.filterTrades(false)
}

func (p *Portfolio) filterTrades(win bool) []ClosedTrade {
	var out []ClosedTrade
	for _, t := range p.Trades {
		if t.IsWin() == win {
			out = append(out, t)
		}
	}
	return out
}

// RealizedPnL sums the PnL of closed trades
func (p *Portfolio) RealizedPnL() float64 {
	total := 0.0
	for _, t := range p.Trades {
		total += t.PnL
	}
	return total
}

// RecordEquity appends a point to the equity curve
func (p *Portfolio) RecordEquity(date time.Time, equity float64) {
	p.Equity = append(p.Equity, EquityPoint{Date: date, Equity: equity})
}

// MarketValue is Σ|qty|*price over open positions; missing prices count 0
func (p *Portfolio) MarketValue(prices map[string]float64) float64 {
	value := 0.0
	for code, pos := range p.Positions {
		value += math.Abs(pos.Quantity) * prices[code]
	}
	return value
}

// VerifyEquity rebuilds cash from the initial capital, the realized PnL and
// the entry cash flows of open positions, and checks it against the booked
// cash and the equity of the latest curve point marked at prices.
func (p *Portfolio) VerifyEquity(prices map[string]float64) error {
	expected := p.InitialCapital + p.RealizedPnL()
	for _, pos := range p.Positions {
		value := math.Abs(pos.Quantity) * pos.EntryPrice
		if pos.Direction() == Long {
			expected -= value + pos.EntryCommission
		} else {
			expected += value - pos.EntryCommission
		}
	}
	if math.Abs(expected-p.Cash) > equityTolerance {
		return errors.NewE(ErrEquityInvariant, fmt.Sprintf("cash %.4f, ledger implies %.4f", p.Cash, expected), "")
	}

	if n := len(p.Equity); n > 0 {
		marked := p.Cash + p.MarketValue(prices)
		if last := p.Equity[n-1].Equity; math.Abs(last-marked) > equityTolerance {
			return errors.NewE(ErrEquityInvariant, fmt.Sprintf("equity %.4f, marked %.4f", last, marked), "")
		}
	}
	return nil
}
