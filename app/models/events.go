package models

import (
	"sort"
	"time"
)

// TradeSummary digests the closed trades of one code
type TradeSummary struct {
	Code          string    `json:"code"`
	Trades        int       `json:"trades"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	RealizedPnL   float64   `json:"realized_pnl"`
	LastDirection Direction `json:"last_direction"`
	LastExit      time.Time `json:"last_exit"`
}

// Summaries returns one summary per traded code, sorted by code
func (p *Portfolio) Summaries() []TradeSummary {
	byCode := make(map[string]*TradeSummary)
	for _, t := range p.Trades {
		s, ok := byCode[t.Code]
		if !ok {
			s = &TradeSummary{Code: t.Code}
			byCode[t.Code] = s
		}
		s.Trades++
		if t.IsWin() {
			s.Wins++
		} else {
			s.Losses++
		}
		s.RealizedPnL += t.PnL
		if !t.ExitDate.Before(s.LastExit) {
			s.LastExit = t.ExitDate
			s.LastDirection = t.Direction
		}
	}

	out := make([]TradeSummary, 0, len(byCode))
	for _, s := range byCode {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// TradesOf returns the closed trades of code in ledger order
func (p *Portfolio) TradesOf(code string) []ClosedTrade {
	var out []ClosedTrade
	for _, t := range p.Trades {
		if t.Code == code {
			out = append(out, t)
		}
	}
	return out
}
