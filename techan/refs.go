package techan

import "github.com/oarkflow/stockbt/app/models/indicator"

// IndicatorRefs lists the indicator operands used by rules, one per series
// key, in first-seen order. Nil rules are skipped.
func IndicatorRefs(rules ...Rule) []IndicatorOperand {
	var refs []IndicatorOperand
	seen := make(map[indicator.Key]bool)

	visit := func(o Operand) {
		ref, ok := o.(IndicatorOperand)
		if !ok || seen[ref.Key()] {
			return
		}
		seen[ref.Key()] = true
		refs = append(refs, ref)
	}

	var walk func(r Rule)
	walk = func(r Rule) {
		switch r := r.(type) {
		case CrossAbove:
			visit(r.Left)
			visit(r.Right)
		case CrossBelow:
			visit(r.Left)
			visit(r.Right)
		case Above:
			visit(r.Left)
			visit(r.Right)
		case Below:
			visit(r.Left)
			visit(r.Right)
		case Equals:
			visit(r.Left)
			visit(r.Right)
		case Between:
			visit(r.Left)
			visit(r.Lower)
		case And:
			for _, child := range r.Rules {
				walk(child)
			}
		case Or:
			for _, child := range r.Rules {
				walk(child)
			}
		case Not:
			walk(r.Rule)
		case Consecutive:
			walk(r.Rule)
		case AnyOf:
			walk(r.Rule)
		}
	}

	for _, r := range rules {
		walk(r)
	}
	return refs
}
