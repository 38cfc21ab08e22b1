package techan

import (
	"fmt"
	"strconv"

	"github.com/oarkflow/stockbt/app/models/indicator"
)

type parser struct {
	tokens []token
	pos    int
}

// Parse turns rule text into a rule tree. The whole text must be one rule;
// on any error the rule is nil and the error is a *SyntaxError.
func Parse(text string) (Rule, error) {
	p := &parser{tokens: scan(text)}
	r, err := p.parseRule()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %s after rule", tok)
	}
	return r, nil
}

// MustParse is like Parse but panics on error. Meant for fixed rule text.
func MustParse(text string) Rule {
	r, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return r
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &SyntaxError{Offset: tok.offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", what, tok)
	}
	return tok, nil
}

func (p *parser) parseRule() (Rule, error) {
	tok, err := p.expect(tokIdent, "rule")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}

	var r Rule
	switch tok.text {
	case "CROSS_ABOVE", "CROSS_BELOW", "ABOVE", "BELOW", "EQUALS":
		r, err = p.parseComparison(tok.text)
	case "BETWEEN":
		r, err = p.parseBetween()
	case "AND", "OR":
		r, err = p.parseLogic(tok.text)
	case "NOT":
		var child Rule
		child, err = p.parseRule()
		r = Not{Rule: child}
	case "CONSECUTIVE", "ANY_OF":
		r, err = p.parseTemporal(tok.text)
	default:
		return nil, p.errorf(tok, "unknown rule %s", tok)
	}
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *parser) parseComparison(name string) (Rule, error) {
	left, right, err := p.parseOperandPair()
	if err != nil {
		return nil, err
	}
	switch name {
	case "CROSS_ABOVE":
		return CrossAbove{Left: left, Right: right}, nil
	case "CROSS_BELOW":
		return CrossBelow{Left: left, Right: right}, nil
	case "ABOVE":
		return Above{Left: left, Right: right}, nil
	case "BELOW":
		return Below{Left: left, Right: right}, nil
	}
	return Equals{Left: left, Right: right}, nil
}

func (p *parser) parseOperandPair() (Operand, Operand, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(tokComma, `","`); err != nil {
		return nil, nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (p *parser) parseBetween() (Rule, error) {
	left, lower, err := p.parseOperandPair()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokComma, `","`); err != nil {
		return nil, err
	}
	upper, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	return Between{Left: left, Lower: lower, Upper: upper}, nil
}

func (p *parser) parseLogic(name string) (Rule, error) {
	var rules []Rule
	for {
		child, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, child)
		if p.peek().kind != tokComma {
			break
		}
		p.next()
	}
	if len(rules) < 2 {
		return nil, p.errorf(p.peek(), "%s needs at least two rules", name)
	}
	if name == "AND" {
		return And{Rules: rules}, nil
	}
	return Or{Rules: rules}, nil
}

func (p *parser) parseTemporal(name string) (Rule, error) {
	child, err := p.parseRule()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokComma, `","`); err != nil {
		return nil, err
	}
	lookback, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if name == "CONSECUTIVE" {
		return Consecutive{Rule: child, Lookback: lookback}, nil
	}
	return AnyOf{Rule: child, Lookback: lookback}, nil
}

func (p *parser) parseOperand() (Operand, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		v, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		return ConstantOperand{Value: v}, nil
	case tokIdent:
		p.next()
	default:
		return nil, p.errorf(tok, "expected operand, found %s", tok)
	}

	if o, ok := priceWords[tok.text]; ok {
		return o, nil
	}
	syntax, ok := indicatorWords[tok.text]
	if !ok {
		return nil, p.errorf(tok, "unknown operand %s", tok)
	}
	o := IndicatorOperand{Kind: syntax.kind, Field: syntax.field}
	if syntax.arity == 0 {
		return o, nil
	}

	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}
	args, err := p.parseArgs(syntax)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}

	switch syntax.kind {
	case indicator.MACD:
		o.Params = indicator.Params{Fast: int(args[0]), Slow: int(args[1]), Signal: int(args[2])}
	case indicator.STOCH:
		o.Params = indicator.Params{KPeriod: int(args[0]), DPeriod: int(args[1])}
	case indicator.BOLLINGER:
		o.Params = indicator.Params{Period: int(args[0]), Multiplier: args[1]}
	default:
		o.Params = indicator.Params{Period: int(args[0])}
	}
	return o, nil
}

// parseArgs reads arity comma-separated parameters. All are positive
// integers except the Bollinger multiplier, a positive number.
func (p *parser) parseArgs(syntax indicatorSyntax) ([]float64, error) {
	args := make([]float64, 0, syntax.arity)
	for i := 0; i < syntax.arity; i++ {
		if i > 0 {
			if _, err := p.expect(tokComma, `","`); err != nil {
				return nil, err
			}
		}
		if syntax.kind == indicator.BOLLINGER && i == 1 {
			tok := p.peek()
			mult, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			if mult <= 0 {
				return nil, p.errorf(tok, "multiplier must be positive, found %s", tok)
			}
			args = append(args, mult)
			continue
		}
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		args = append(args, float64(n))
	}
	return args, nil
}

func (p *parser) parseNumber() (float64, error) {
	tok, err := p.expect(tokNumber, "number")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil {
		return 0, p.errorf(tok, "invalid number %s", tok)
	}
	return v, nil
}

// parseInt reads an integer literal > 0
func (p *parser) parseInt() (int, error) {
	tok, err := p.expect(tokNumber, "positive integer")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil || n <= 0 {
		return 0, p.errorf(tok, "expected positive integer, found %s", tok)
	}
	return n, nil
}
