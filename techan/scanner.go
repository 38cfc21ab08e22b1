package techan

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokIllegal
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokIllegal:
		return fmt.Sprintf("illegal character %q", t.text)
	}
	return fmt.Sprintf("%q", t.text)
}

// SyntaxError reports malformed rule text with the byte offset where parsing stopped
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("rule syntax error at offset %d: %s", e.Offset, e.Msg)
}

// scan splits text into tokens. It never fails; bad input becomes a tokIllegal
// token the parser rejects. The last token is always tokEOF.
func scan(text string) []token {
	var tokens []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case c == ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
		case isLetter(c):
			start := i
			for i < len(text) && (isLetter(text[i]) || isDigit(text[i])) {
				i++
			}
			tokens = append(tokens, token{tokIdent, text[start:i], start})
		case isDigit(c) || c == '-':
			start := i
			if end, ok := scanNumber(text, i); ok {
				i = end
				tokens = append(tokens, token{tokNumber, text[start:i], start})
				continue
			}
			tokens = append(tokens, token{tokIllegal, text[start : start+1], start})
			return append(tokens, token{tokEOF, "", len(text)})
		default:
			tokens = append(tokens, token{tokIllegal, string(c), i})
			return append(tokens, token{tokEOF, "", len(text)})
		}
	}
	return append(tokens, token{tokEOF, "", len(text)})
}

// scanNumber matches ["-"] digits ["." digits] at i and returns the end offset
func scanNumber(text string, i int) (int, bool) {
	if text[i] == '-' {
		i++
	}
	start := i
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if i == start {
		return 0, false
	}
	if i < len(text) && text[i] == '.' {
		i++
		fraction := i
		for i < len(text) && isDigit(text[i]) {
			i++
		}
		if i == fraction {
			return 0, false
		}
	}
	return i, true
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
