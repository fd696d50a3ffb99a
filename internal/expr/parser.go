package expr

import (
	"fmt"
	"strconv"
	"unicode"
)

// parser is a hand-written recursive-descent parser over the raw
// equation text. Grammar, loosest binding first:
//
//	expr    = term   { ("+" | "-") term }
//	term    = unary  { ("*" | "/") unary }
//	unary   = "-" unary | power
//	power   = primary [ ("^" | "**") unary ]     (right-associative)
//	primary = number | symbol | symbol "(" expr ")" | "(" expr ")"
type parser struct {
	text string
	pos  int
}

func parse(text string) (node, error) {
	p := &parser{text: text}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.text) {
		return nil, p.errorf("unexpected %q", p.text[p.pos])
	}
	return n, nil
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Text: p.text, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.text) && (p.text[p.pos] == ' ' || p.text[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.text) {
		return 0
	}
	return p.text[p.pos]
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		// "**" is power, not multiplication.
		if op == '*' && p.pos+1 < len(p.text) && p.text[p.pos+1] == '*' {
			return left, nil
		}
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negNode{arg: arg}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == '^' {
		p.pos++
	} else if p.peek() == '*' && p.pos+1 < len(p.text) && p.text[p.pos+1] == '*' {
		p.pos += 2
	} else {
		return base, nil
	}
	// Right-associative, and the exponent may carry a unary minus.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: '^', l: base, r: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return inner, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case isIdentStart(rune(c)):
		return p.parseSymbolOrCall()
	case c == 0:
		return nil, p.errorf("unexpected end of expression")
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *parser) parseNumber() (node, error) {
	start := p.pos
	for p.pos < len(p.text) {
		c := p.text[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	lit := p.text[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("invalid number %q", lit)
	}
	return &numberNode{val: v}, nil
}

func (p *parser) parseSymbolOrCall() (node, error) {
	start := p.pos
	for p.pos < len(p.text) && isIdentPart(rune(p.text[p.pos])) {
		p.pos++
	}
	name := p.text[start:p.pos]
	p.skipSpace()
	if p.peek() != '(' {
		return &symbolNode{name: name}, nil
	}
	// A call: the name must be one of the known functions.
	if _, ok := functions[name]; !ok {
		p.pos = start
		return nil, p.errorf("unknown function %q", name)
	}
	p.pos++
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ')' {
		return nil, p.errorf("expected ')' after %s argument", name)
	}
	p.pos++
	return &callNode{fn: name, arg: arg}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
