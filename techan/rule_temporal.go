package techan

import "strconv"

// Consecutive is satisfied when Rule holds on each of the Lookback bars ending at index
type Consecutive struct {
	Rule     Rule
	Lookback int
}

// AnyOf is satisfied when Rule holds on at least one of the Lookback bars ending at index
type AnyOf struct {
	Rule     Rule
	Lookback int
}

func (Consecutive) rule() {}
func (AnyOf) rule()       {}

func (r Consecutive) IsSatisfied(index int, frame *Frame) bool {
	if r.Lookback <= 0 || index < r.Lookback-1 || r.Rule == nil {
		return false
	}

	for i := index - r.Lookback + 1; i <= index; i++ {
		if !r.Rule.IsSatisfied(i, frame) {
			return false
		}
	}
	return true
}

func (r AnyOf) IsSatisfied(index int, frame *Frame) bool {
	if r.Lookback <= 0 || index < r.Lookback-1 || r.Rule == nil {
		return false
	}

	for i := index - r.Lookback + 1; i <= index; i++ {
		if r.Rule.IsSatisfied(i, frame) {
			return true
		}
	}
	return false
}

func (r Consecutive) String() string {
	return call("CONSECUTIVE", r.Rule, literal(r.Lookback))
}

func (r AnyOf) String() string {
	return call("ANY_OF", r.Rule, literal(r.Lookback))
}

type literal int

func (l literal) String() string { return strconv.Itoa(int(l)) }
