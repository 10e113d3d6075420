package oracle

import (
	"math/big"
	"strings"
)

// Binding strength of a printed node; a child binding looser than its parent
// needs parentheses.
const (
	precAdd = iota + 1
	precMul
	precPow
	precAtom
)

// String renders e as infix text that Parse accepts.
func String(e Expr) string {
	s, _ := format(e)
	return s
}

func format(e Expr) (string, int) {
	switch n := e.(type) {
	case *Num:
		return formatRat(n.V)
	case *Sym:
		return n.Name, precAtom
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = String(a)
		}
		return n.Fn + "(" + strings.Join(args, ", ") + ")", precAtom
	case *Pow:
		return formatPow(n)
	case *Mul:
		return formatMul(n)
	case *Add:
		return formatAdd(n)
	}
	return "?", precAtom
}

func formatRat(r *big.Rat) (string, int) {
	if r.IsInt() {
		if r.Sign() < 0 {
			return r.Num().String(), precMul
		}
		return r.Num().String(), precAtom
	}
	return r.RatString(), precMul
}

func formatPow(n *Pow) (string, int) {
	if e, ok := asNum(n.Exp); ok {
		if e.Cmp(big.NewRat(1, 2)) == 0 {
			return "sqrt(" + String(n.Base) + ")", precAtom
		}
		if e.Sign() < 0 {
			return formatMul(&Mul{Factors: []Expr{n}})
		}
	}
	return wrap(n.Base, precAtom) + "^" + wrap(n.Exp, precAtom), precPow
}

// wrap parenthesizes e unless it binds at least as tightly as min.
func wrap(e Expr, min int) string {
	s, p := format(e)
	if p < min {
		return "(" + s + ")"
	}
	return s
}

// splitFraction separates a product into its rational coefficient, the factors
// above the line, and the factors below it.
func splitFraction(factors []Expr) (*big.Rat, []Expr, []Expr) {
	coef := big.NewRat(1, 1)
	var numer, denom []Expr
	for _, f := range factors {
		if r, ok := asNum(f); ok {
			coef.Mul(coef, r)
			continue
		}
		if p, ok := f.(*Pow); ok {
			if e, ok := asNum(p.Exp); ok && e.Sign() < 0 {
				inv := new(big.Rat).Neg(e)
				if inv.Cmp(big.NewRat(1, 1)) == 0 {
					denom = append(denom, p.Base)
				} else {
					denom = append(denom, &Pow{Base: p.Base, Exp: &Num{V: inv}})
				}
				continue
			}
		}
		numer = append(numer, f)
	}
	return coef, numer, denom
}

func formatMul(n *Mul) (string, int) {
	coef, numer, denom := splitFraction(n.Factors)
	negative := coef.Sign() < 0
	abs := new(big.Rat).Abs(coef)

	var top []string
	if !abs.Num().IsInt64() || abs.Num().Int64() != 1 || len(numer) == 0 {
		top = append(top, abs.Num().String())
	}
	for _, f := range numer {
		top = append(top, wrap(f, precPow))
	}
	s := strings.Join(top, "*")

	var bottom []string
	if !abs.IsInt() {
		bottom = append(bottom, abs.Denom().String())
	}
	for _, f := range denom {
		bottom = append(bottom, wrap(f, precPow))
	}
	switch len(bottom) {
	case 0:
	case 1:
		s += "/" + bottom[0]
	default:
		s += "/(" + strings.Join(bottom, "*") + ")"
	}
	if negative {
		s = "-" + s
	}
	return s, precMul
}

// isNegative reports whether e prints with a leading minus sign.
func isNegative(e Expr) bool {
	switch n := e.(type) {
	case *Num:
		return n.V.Sign() < 0
	case *Mul:
		coef, _, _ := splitFraction(n.Factors)
		return coef.Sign() < 0
	}
	return false
}

// negate flips the sign of a term for which isNegative is true.
func negate(e Expr) Expr {
	switch n := e.(type) {
	case *Num:
		return &Num{V: new(big.Rat).Neg(n.V)}
	case *Mul:
		factors := make([]Expr, 0, len(n.Factors)+1)
		flipped := false
		for _, f := range n.Factors {
			if r, ok := asNum(f); ok && !flipped {
				factors = append(factors, &Num{V: new(big.Rat).Neg(r)})
				flipped = true
				continue
			}
			factors = append(factors, f)
		}
		if !flipped {
			factors = append([]Expr{num(-1)}, factors...)
		}
		return &Mul{Factors: factors}
	}
	return neg(e)
}

func formatAdd(n *Add) (string, int) {
	var b strings.Builder
	for i, t := range n.Terms {
		if i == 0 {
			s, p := format(t)
			if p < precAdd+1 {
				s = "(" + s + ")"
			}
			b.WriteString(s)
			continue
		}
		if isNegative(t) {
			b.WriteString(" - ")
			b.WriteString(wrap(negate(t), precMul))
			continue
		}
		b.WriteString(" + ")
		b.WriteString(wrap(t, precMul))
	}
	return b.String(), precAdd
}
