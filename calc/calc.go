// Package calc evaluates arithmetic expressions for the calculator tool.
//
// The grammar covers numbers, the constants pi and e, the binary operators
// + - * / // % and **, unary signs, parentheses and a fixed set of math
// functions. ** is right associative and binds tighter than unary minus,
// so -2**2 is -4.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrSyntax is returned for malformed expressions.
var ErrSyntax = errors.New("calc: syntax error")

// ErrDomain is returned for operations outside a function's domain, such as
// division by zero or the square root of a negative number.
var ErrDomain = errors.New("calc: math domain error")

// Eval parses and evaluates expr.
func Eval(expr string) (float64, error) {
	toks, err := lex(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result is not finite", ErrDomain)
	}
	return v, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || s[i] == '_') {
				i++
			}
			if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
				j := i + 1
				if j < len(s) && (s[j] == '+' || s[j] == '-') {
					j++
				}
				if j < len(s) && s[j] >= '0' && s[j] <= '9' {
					i = j
					for i < len(s) && s[i] >= '0' && s[i] <= '9' {
						i++
					}
				}
			}
			text := s[start:i]
			n, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, text, start)
			}
			toks = append(toks, token{kind: tokNum, text: text, num: n, pos: start})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(s) && (unicode.IsLetter(rune(s[i])) || unicode.IsDigit(rune(s[i])) || s[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: s[start:i], pos: start})
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case strings.HasPrefix(s[i:], "**"), strings.HasPrefix(s[i:], "//"):
			toks = append(toks, token{kind: tokOp, text: s[i : i+2], pos: i})
			i += 2
		case strings.ContainsRune("+-*/%^", c):
			text := string(c)
			if c == '^' {
				text = "**"
			}
			toks = append(toks, token{kind: tokOp, text: text, pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, c, i)
		}
	}
	return append(toks, token{kind: tokEOF, text: "end of input", pos: len(s)}), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

// expr = term { ("+" | "-") term }
func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.isOp("+", "-") {
		op := p.advance().text
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

// term = unary { ("*" | "/" | "//" | "%") unary }
func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.isOp("*", "/", "//", "%") {
		op := p.advance().text
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrDomain)
			}
			left /= right
		case "//":
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrDomain)
			}
			left = math.Floor(left / right)
		case "%":
			if right == 0 {
				return 0, fmt.Errorf("%w: modulo by zero", ErrDomain)
			}
			left = mod(left, right)
		}
	}
	return left, nil
}

// unary = ("+" | "-") unary | power
func (p *parser) unary() (float64, error) {
	if p.isOp("+", "-") {
		op := p.advance().text
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.power()
}

// power = primary [ "**" unary ]
func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if !p.isOp("**") {
		return base, nil
	}
	p.advance()
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return pow(base, exp)
}

// primary = number | constant | name "(" args ")" | "(" expr ")"
func (p *parser) primary() (float64, error) {
	t := p.advance()
	switch t.kind {
	case tokNum:
		return t.num, nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokRParen); err != nil {
			return 0, err
		}
		return v, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			p.advance()
			args, err := p.args()
			if err != nil {
				return 0, err
			}
			return call(t.text, args)
		}
		if v, ok := constants[t.text]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("%w: name %q is not defined", ErrSyntax, t.text)
	default:
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
	}
}

func (p *parser) args() ([]float64, error) {
	var args []float64
	if p.peek().kind == tokRParen {
		p.advance()
		return args, nil
	}
	for {
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if p.peek().kind == tokComma {
			p.advance()
			continue
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *parser) expect(kind tokKind) error {
	t := p.advance()
	if t.kind != kind {
		return fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
	}
	return nil
}

// mod follows floored division: the result takes the sign of the divisor.
func mod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func pow(base, exp float64) (float64, error) {
	if base == 0 && exp < 0 {
		return 0, fmt.Errorf("%w: zero to a negative power", ErrDomain)
	}
	if base < 0 && exp != math.Trunc(exp) {
		return 0, fmt.Errorf("%w: fractional power of a negative number", ErrDomain)
	}
	return math.Pow(base, exp), nil
}
