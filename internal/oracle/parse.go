package oracle

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// functions maps accepted call names to their canonical name.
var functions = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"cot": "cot", "sec": "sec", "csc": "csc",
	"asin": "asin", "acos": "acos", "atan": "atan",
	"arcsin": "asin", "arccos": "acos", "arctan": "atan",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"exp": "exp", "ln": "ln", "log": "log", "sqrt": "sqrt",
	"abs": "abs", "floor": "floor", "ceil": "ceil", "sign": "sign",
	"binomial": "binomial",
}

// displayFunctions are single letters kept as calls so that step text such as
// "f(x) = x^2" parses for rendering. They have no numeric meaning.
var displayFunctions = map[string]bool{"f": true, "g": true, "h": true}

func tokenize(s string) ([]token, error) {
	var toks []token
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			if i < len(runes) && runes[i] == '.' {
				i++
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			toks = append(toks, token{kind: tokNum, text: string(runes[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			name := string(runes[start:i])
			if name == "π" {
				name = "pi"
			}
			toks = append(toks, token{kind: tokIdent, text: name, pos: start})
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads an infix expression into a tree. Juxtaposition is multiplication,
// ** is a synonym for ^, and ^ binds tighter than unary minus so -x^2 is -(x^2).
func Parse(s string) (Expr, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, fmt.Errorf("empty expression")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(op string) bool {
	tok := p.peek()
	return tok.kind == tokOp && tok.text == op
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = neg(right)
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return &Add{Terms: terms}, nil
}

func (p *parser) startsOperand() bool {
	switch p.peek().kind {
	case tokNum, tokIdent, tokLParen:
		return true
	}
	return false
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{left}
	for {
		switch {
		case p.isOp("*"):
			p.next()
		case p.isOp("/"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, pow(right, num(-1)))
			continue
		case p.startsOperand():
		default:
			if len(factors) == 1 {
				return left, nil
			}
			return &Mul{Factors: factors}, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		factors = append(factors, right)
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.isOp("-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if r, ok := asNum(operand); ok {
			return &Num{V: new(big.Rat).Neg(r)}, nil
		}
		return neg(operand), nil
	}
	if p.isOp("+") {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(tok.text)
		if !ok {
			return nil, fmt.Errorf("invalid number %q", tok.text)
		}
		return &Num{V: r}, nil
	case tokIdent:
		if p.peek().kind != tokLParen {
			return sym(tok.text), nil
		}
		fn, known := functions[tok.text]
		if !known && !displayFunctions[tok.text] {
			// x(x+1) is a product, not a call.
			return sym(tok.text), nil
		}
		if !known {
			fn = tok.text
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if fn == "sqrt" {
			if len(args) != 1 {
				return nil, fmt.Errorf("sqrt takes one argument, got %d", len(args))
			}
			return pow(args[0], frac(1, 2)), nil
		}
		return &Call{Fn: fn, Args: args}, nil
	case tokLParen:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", closing.pos)
		}
		return e, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	}
	return nil, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
}

func (p *parser) parseArgs() ([]Expr, error) {
	p.next() // (
	var args []Expr
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return args, nil
		default:
			return nil, fmt.Errorf("expected , or ) at position %d", tok.pos)
		}
	}
}
