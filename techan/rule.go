package techan

import (
	"fmt"
	"math"
	"strings"
)

// equalsEpsilon is the tolerance of EQUALS
const equalsEpsilon = 1e-9

// Rule is a boolean condition over a frame at a bar index.
// The set of rules is closed; trees are immutable once built.
type Rule interface {
	IsSatisfied(index int, frame *Frame) bool
	// String renders the rule in the grammar Parse accepts
	String() string
	rule()
}

// CrossAbove holds when Left moves from at or below Right to strictly above it
type CrossAbove struct{ Left, Right Operand }

// CrossBelow holds when Left moves from at or above Right to strictly below it
type CrossBelow struct{ Left, Right Operand }

// Above holds when Left > Right
type Above struct{ Left, Right Operand }

// Below holds when Left < Right
type Below struct{ Left, Right Operand }

// Equals holds when Left and Right differ by at most 1e-9
type Equals struct{ Left, Right Operand }

// Between holds when Lower <= Left <= Upper
type Between struct {
	Left  Operand
	Lower Operand
	Upper float64
}

// And holds when every child holds
type And struct{ Rules []Rule }

// Or holds when one of the children holds
type Or struct{ Rules []Rule }

// Not negates its child
type Not struct{ Rule Rule }

func (CrossAbove) rule() {}
func (CrossBelow) rule() {}
func (Above) rule()      {}
func (Below) rule()      {}
func (Equals) rule()     {}
func (Between) rule()    {}
func (And) rule()        {}
func (Or) rule()         {}
func (Not) rule()        {}

// NewAnd returns a rule whereby ALL of the passed-in rules must be satisfied.
// The rules are copied.
func NewAnd(rules ...Rule) And {
	return And{Rules: append([]Rule(nil), rules...)}
}

// NewOr returns a rule whereby ONE OF the passed-in rules must be satisfied.
// The rules are copied.
func NewOr(rules ...Rule) Or {
	return Or{Rules: append([]Rule(nil), rules...)}
}

func (r CrossAbove) IsSatisfied(index int, frame *Frame) bool {
	return crossed(r.Left, r.Right, index, frame, func(a, b float64) bool { return a > b })
}

func (r CrossBelow) IsSatisfied(index int, frame *Frame) bool {
	return crossed(r.Left, r.Right, index, frame, func(a, b float64) bool { return a < b })
}

func (r Above) IsSatisfied(index int, frame *Frame) bool {
	return compare(r.Left, r.Right, index, frame, func(a, b float64) bool { return a > b })
}

func (r Below) IsSatisfied(index int, frame *Frame) bool {
	return compare(r.Left, r.Right, index, frame, func(a, b float64) bool { return a < b })
}

func (r Equals) IsSatisfied(index int, frame *Frame) bool {
	return compare(r.Left, r.Right, index, frame, func(a, b float64) bool {
		return math.Abs(a-b) <= equalsEpsilon
	})
}

func (r Between) IsSatisfied(index int, frame *Frame) bool {
	left, ok := resolve(r.Left, index, frame)
	if !ok {
		return false
	}
	lower, ok := resolve(r.Lower, index, frame)
	if !ok {
		return false
	}
	return lower <= left && left <= r.Upper
}

func (r And) IsSatisfied(index int, frame *Frame) bool {
	if len(r.Rules) == 0 {
		return false
	}
	for _, child := range r.Rules {
		if !satisfied(child, index, frame) {
			return false
		}
	}
	return true
}

func (r Or) IsSatisfied(index int, frame *Frame) bool {
	for _, child := range r.Rules {
		if satisfied(child, index, frame) {
			return true
		}
	}
	return false
}

func (r Not) IsSatisfied(index int, frame *Frame) bool {
	if r.Rule == nil {
		return false
	}
	return !r.Rule.IsSatisfied(index, frame)
}

func (r CrossAbove) String() string { return call("CROSS_ABOVE", r.Left, r.Right) }
func (r CrossBelow) String() string { return call("CROSS_BELOW", r.Left, r.Right) }
func (r Above) String() string      { return call("ABOVE", r.Left, r.Right) }
func (r Below) String() string      { return call("BELOW", r.Left, r.Right) }
func (r Equals) String() string     { return call("EQUALS", r.Left, r.Right) }
func (r Between) String() string {
	return call("BETWEEN", r.Left, r.Lower, ConstantOperand{Value: r.Upper})
}
func (r And) String() string { return call("AND", stringers(r.Rules)...) }
func (r Or) String() string  { return call("OR", stringers(r.Rules)...) }
func (r Not) String() string { return call("NOT", r.Rule) }

// compare resolves both operands at index; unresolved operands fail the comparison
func compare(left, right Operand, index int, frame *Frame, holds func(a, b float64) bool) bool {
	a, ok := resolve(left, index, frame)
	if !ok {
		return false
	}
	b, ok := resolve(right, index, frame)
	if !ok {
		return false
	}
	return holds(a, b)
}

// crossed is true when holds(left, right) is false at index-1 and true at index
func crossed(left, right Operand, index int, frame *Frame, holds func(a, b float64) bool) bool {
	if index < 1 {
		return false
	}
	prevLeft, ok := resolve(left, index-1, frame)
	if !ok {
		return false
	}
	prevRight, ok := resolve(right, index-1, frame)
	if !ok {
		return false
	}
	return !holds(prevLeft, prevRight) && compare(left, right, index, frame, holds)
}

func satisfied(r Rule, index int, frame *Frame) bool {
	if r == nil {
		return false
	}
	return r.IsSatisfied(index, frame)
}

func stringers(rules []Rule) []fmt.Stringer {
	out := make([]fmt.Stringer, len(rules))
	for i, r := range rules {
		out[i] = r
	}
	return out
}

func call(name string, args ...fmt.Stringer) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			parts[i] = "nil"
			continue
		}
		parts[i] = a.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
