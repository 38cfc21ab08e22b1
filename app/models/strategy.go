package models

import (
	"time"

	"github.com/oarkflow/errors"

	"github.com/oarkflow/stockbt/techan"
)

var (
	// ErrMissingRule is returned when a strategy lacks its long entry or exit rule
	ErrMissingRule = errors.New("strategy needs entry_long and exit_long rules")
	// ErrMissingShortExit is returned when shorting is enabled with an entry_short rule but no exit_short
	ErrMissingShortExit = errors.New("strategy with allow_short and entry_short needs an exit_short rule")
	// ErrInvalidSizing is returned for a position size outside (0, 1] or max positions below 1
	ErrInvalidSizing = errors.New("invalid position sizing")
)

// StrategyConfig is the textual form of a strategy, as read from config or JSON
type StrategyConfig struct {
	Name          string  `json:"name"`
	EntryLong     string  `json:"entry_long"`
	ExitLong      string  `json:"exit_long"`
	EntryShort    string  `json:"entry_short,omitempty"`
	ExitShort     string  `json:"exit_short,omitempty"`
	PositionSize  float64 `json:"position_size"`
	StopLossPct   float64 `json:"stop_loss_pct"`
	TakeProfitPct float64 `json:"take_profit_pct"`
	MaxPositions  int     `json:"max_positions"`
	AllowShort    bool    `json:"allow_short"`
}

// Strategy is a parsed set of rules plus sizing
type Strategy struct {
	Name          string
	EntryLong     techan.Rule
	ExitLong      techan.Rule
	EntryShort    techan.Rule
	ExitShort     techan.Rule
	PositionSize  float64
	StopLossPct   float64
	TakeProfitPct float64
	MaxPositions  int
	AllowShort    bool
}

// Getter is the config lookup a strategy is read from. config.File satisfies it.
type Getter interface {
	GetString(section, key, def string) string
	GetInt(section, key string, def int) int
	GetDouble(section, key string, def float64) float64
	GetBool(section, key string, def bool) bool
	GetDate(section, key string, def time.Time) time.Time
}

// NewStrategy parses the rules of c
func NewStrategy(c StrategyConfig) (*Strategy, error) {
	if c.EntryLong == "" || c.ExitLong == "" {
		return nil, ErrMissingRule
	}
	if c.AllowShort && c.EntryShort != "" && c.ExitShort == "" {
		return nil, ErrMissingShortExit
	}
	if !(c.PositionSize > 0 && c.PositionSize <= 1) || c.MaxPositions < 1 || c.StopLossPct < 0 || c.TakeProfitPct < 0 {
		return nil, ErrInvalidSizing
	}

	s := &Strategy{
		Name:          c.Name,
		PositionSize:  c.PositionSize,
		StopLossPct:   c.StopLossPct,
		TakeProfitPct: c.TakeProfitPct,
		MaxPositions:  c.MaxPositions,
		AllowShort:    c.AllowShort,
	}

	rules := []struct {
		name string
		text string
		dst  *techan.Rule
	}{
		{"entry_long", c.EntryLong, &s.EntryLong},
		{"exit_long", c.ExitLong, &s.ExitLong},
		{"entry_short", c.EntryShort, &s.EntryShort},
		{"exit_short", c.ExitShort, &s.ExitShort},
	}
	for _, r := range rules {
		if r.text == "" {
			continue
		}
		rule, err := techan.Parse(r.text)
		if err != nil {
			return nil, errors.NewE(err, "invalid "+r.name+" rule", "")
		}
		*r.dst = rule
	}
	return s, nil
}

// StrategyConfigFrom reads the [strategy] section and the allow_short flag of [backtest]
func StrategyConfigFrom(conf Getter) StrategyConfig {
	return StrategyConfig{
		Name:          conf.GetString("strategy", "name", "strategy"),
		EntryLong:     conf.GetString("strategy", "entry_long", ""),
		ExitLong:      conf.GetString("strategy", "exit_long", ""),
		EntryShort:    conf.GetString("strategy", "entry_short", ""),
		ExitShort:     conf.GetString("strategy", "exit_short", ""),
		PositionSize:  conf.GetDouble("strategy", "position_size", 1),
		StopLossPct:   conf.GetDouble("strategy", "stop_loss_pct", 0),
		TakeProfitPct: conf.GetDouble("strategy", "take_profit_pct", 0),
		MaxPositions:  conf.GetInt("strategy", "max_positions", 1),
		AllowShort:    conf.GetBool("backtest", "allow_short", false),
	}
}

// StrategyFromConfig builds the strategy described by conf
func StrategyFromConfig(conf Getter) (*Strategy, error) {
	return NewStrategy(StrategyConfigFrom(conf))
}

// Rules returns the non-nil rules of the strategy
func (s *Strategy) Rules() []techan.Rule {
	var rules []techan.Rule
	for _, r := range []techan.Rule{s.EntryLong, s.ExitLong, s.EntryShort, s.ExitShort} {
		if r != nil {
			rules = append(rules, r)
		}
	}
	return rules
}

// Sizing returns the entry parameters of the strategy
func (s *Strategy) Sizing() Sizing {
	return Sizing{
		Fraction:      s.PositionSize,
		StopLossPct:   s.StopLossPct,
		TakeProfitPct: s.TakeProfitPct,
		MaxPositions:  s.MaxPositions,
	}
}
