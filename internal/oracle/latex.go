package oracle

import (
	"math/big"
	"strings"
)

var latexFunctions = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`,
	"cot": `\cot`, "sec": `\sec`, "csc": `\csc`,
	"asin": `\arcsin`, "acos": `\arccos`, "atan": `\arctan`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`,
	"ln": `\ln`, "log": `\log`,
}

var greek = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"theta": true, "lambda": true, "mu": true, "sigma": true, "phi": true, "omega": true,
}

// LaTeX renders e as LaTeX markup.
func LaTeX(e Expr) string {
	s, _ := latex(e)
	return s
}

func latex(e Expr) (string, int) {
	switch n := e.(type) {
	case *Num:
		return latexRat(n.V)
	case *Sym:
		switch {
		case n.Name == "pi":
			return `\pi`, precAtom
		case n.Name == "Infinity":
			return `\infty`, precAtom
		case greek[n.Name]:
			return `\` + n.Name, precAtom
		}
		return n.Name, precAtom
	case *Call:
		return latexCall(n), precAtom
	case *Pow:
		return latexPow(n)
	case *Mul:
		return latexMul(n)
	case *Add:
		var b strings.Builder
		for i, t := range n.Terms {
			switch {
			case i == 0:
				b.WriteString(latexWrap(t, precAdd+1))
			case isNegative(t):
				b.WriteString(" - ")
				b.WriteString(latexWrap(negate(t), precMul))
			default:
				b.WriteString(" + ")
				b.WriteString(latexWrap(t, precMul))
			}
		}
		return b.String(), precAdd
	}
	return "", precAtom
}

func latexRat(r *big.Rat) (string, int) {
	if r.IsInt() {
		if r.Sign() < 0 {
			return r.Num().String(), precMul
		}
		return r.Num().String(), precAtom
	}
	abs := new(big.Rat).Abs(r)
	s := `\frac{` + abs.Num().String() + `}{` + abs.Denom().String() + `}`
	if r.Sign() < 0 {
		return "-" + s, precMul
	}
	return s, precAtom
}

func latexWrap(e Expr, min int) string {
	s, p := latex(e)
	if p < min {
		return `\left(` + s + `\right)`
	}
	return s
}

func latexCall(n *Call) string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = LaTeX(a)
	}
	switch n.Fn {
	case "abs":
		return `\left|` + strings.Join(args, ", ") + `\right|`
	case "exp":
		if len(args) == 1 {
			return `e^{` + args[0] + `}`
		}
	case "binomial":
		if len(args) == 2 {
			return `\binom{` + args[0] + `}{` + args[1] + `}`
		}
	case "floor":
		return `\left\lfloor ` + strings.Join(args, ", ") + ` \right\rfloor`
	case "ceil":
		return `\left\lceil ` + strings.Join(args, ", ") + ` \right\rceil`
	case "log":
		if len(args) == 2 {
			return `\log_{` + args[1] + `}\left(` + args[0] + `\right)`
		}
	}
	name, ok := latexFunctions[n.Fn]
	if !ok {
		name = n.Fn
		if len([]rune(name)) > 1 {
			name = `\operatorname{` + name + `}`
		}
	}
	return name + `\left(` + strings.Join(args, ", ") + `\right)`
}

func latexPow(n *Pow) (string, int) {
	if x, ok := asNum(n.Exp); ok {
		if x.Sign() < 0 {
			return latexMul(&Mul{Factors: []Expr{n}})
		}
		if x.Num().IsInt64() && x.Num().Int64() == 1 && !x.IsInt() {
			if x.Denom().Int64() == 2 {
				return `\sqrt{` + LaTeX(n.Base) + `}`, precAtom
			}
			return `\sqrt[` + x.Denom().String() + `]{` + LaTeX(n.Base) + `}`, precAtom
		}
	}
	base := latexWrap(n.Base, precAtom)
	if _, ok := n.Base.(*Call); ok {
		base = `\left(` + LaTeX(n.Base) + `\right)`
	}
	return base + `^{` + LaTeX(n.Exp) + `}`, precPow
}

func latexMul(n *Mul) (string, int) {
	coef, numer, denom := splitFraction(n.Factors)
	negative := coef.Sign() < 0
	abs := new(big.Rat).Abs(coef)

	var top strings.Builder
	one := abs.Num().IsInt64() && abs.Num().Int64() == 1
	if !one || len(numer) == 0 {
		top.WriteString(abs.Num().String())
	}
	for i, f := range numer {
		s := latexWrap(f, precPow)
		if i > 0 || (top.Len() > 0 && s != "" && s[0] >= '0' && s[0] <= '9') {
			top.WriteString(` \cdot `)
		}
		top.WriteString(s)
	}

	var bottom []string
	if !abs.IsInt() {
		bottom = append(bottom, abs.Denom().String())
	}
	for _, f := range denom {
		bottom = append(bottom, latexWrap(f, precPow))
	}
	s := top.String()
	if len(bottom) > 0 {
		s = `\frac{` + s + `}{` + strings.Join(bottom, ` \cdot `) + `}`
	}
	if negative {
		s = "-" + s
	}
	return s, precMul
}
