package oracle

import (
	"errors"
	"fmt"
	"math/big"
)

// errNoAntiderivative means no rule matched; callers may fall back to numeric quadrature.
var errNoAntiderivative = errors.New("no elementary antiderivative found")

// Antiderivative returns a simplified antiderivative of e with respect to v,
// without the constant of integration.
func Antiderivative(e Expr, v string) (Expr, error) {
	f, err := integrate(Simplify(e), v)
	if err != nil {
		return nil, err
	}
	return Simplify(f), nil
}

func integrate(e Expr, v string) (Expr, error) {
	if !containsSym(e, v) {
		return mul(e, sym(v)), nil
	}
	if p, ok := toPoly(e, v); ok {
		return p.antideriv().toExpr(v), nil
	}
	switch n := e.(type) {
	case *Sym:
		return mul(frac(1, 2), pow(n, num(2))), nil
	case *Add:
		terms := make([]Expr, len(n.Terms))
		for i, t := range n.Terms {
			f, err := integrate(t, v)
			if err != nil {
				return nil, err
			}
			terms[i] = f
		}
		return &Add{Terms: terms}, nil
	case *Mul:
		return integrateProduct(n, v)
	case *Pow:
		return integratePow(n, v)
	case *Call:
		return integrateCall(n, v)
	}
	return nil, errNoAntiderivative
}

// linearCoefficient returns a when u = a*v + b with rational a != 0 and b.
func linearCoefficient(u Expr, v string) (*big.Rat, bool) {
	p, ok := toPoly(Simplify(u), v)
	if !ok || p.degree() != 1 {
		return nil, false
	}
	return p.coeff(1), true
}

func integrateProduct(n *Mul, v string) (Expr, error) {
	var constant, dependent []Expr
	for _, f := range n.Factors {
		if containsSym(f, v) {
			dependent = append(dependent, f)
		} else {
			constant = append(constant, f)
		}
	}
	if len(constant) > 0 {
		var inner Expr
		if len(dependent) == 1 {
			inner = dependent[0]
		} else {
			inner = &Mul{Factors: dependent}
		}
		f, err := integrate(inner, v)
		if err != nil {
			return nil, err
		}
		return mul(append(constant, f)...), nil
	}

	// polynomial times one sin, cos or exponential factor: tabular integration by parts
	var polyFactors []Expr
	var other Expr
	for _, f := range dependent {
		if _, ok := toPoly(f, v); ok {
			polyFactors = append(polyFactors, f)
			continue
		}
		if other != nil {
			return nil, errNoAntiderivative
		}
		other = f
	}
	if other == nil || len(polyFactors) == 0 || !cyclesUnderIntegration(other, v) {
		return nil, errNoAntiderivative
	}
	p, _ := toPoly(&Mul{Factors: polyFactors}, v)
	return tabular(p, other, v)
}

// cyclesUnderIntegration reports whether repeated integration of e keeps it in
// the same family, which is what tabular integration needs.
func cyclesUnderIntegration(e Expr, v string) bool {
	switch n := e.(type) {
	case *Call:
		if len(n.Args) != 1 {
			return false
		}
		switch n.Fn {
		case "sin", "cos", "exp", "sinh", "cosh":
			_, ok := linearCoefficient(n.Args[0], v)
			return ok
		}
	case *Pow:
		if containsSym(n.Base, v) {
			return false
		}
		_, ok := linearCoefficient(n.Exp, v)
		return ok
	}
	return false
}

func tabular(p poly, g Expr, v string) (Expr, error) {
	var terms []Expr
	sign := int64(1)
	cur := g
	for p.degree() >= 0 {
		next, err := integrate(cur, v)
		if err != nil {
			return nil, err
		}
		cur = Simplify(next)
		terms = append(terms, mul(num(sign), p.toExpr(v), cur))
		p = p.deriv()
		sign = -sign
	}
	return &Add{Terms: terms}, nil
}

func integratePow(n *Pow, v string) (Expr, error) {
	if !containsSym(n.Exp, v) {
		a, ok := linearCoefficient(n.Base, v)
		if ok {
			inv := new(big.Rat).Inv(a)
			if isInt(n.Exp, -1) {
				return mul(ratNum(inv), call("ln", call("abs", n.Base))), nil
			}
			e1 := add(n.Exp, num(1))
			return mul(ratNum(inv), pow(n.Base, e1), pow(e1, num(-1))), nil
		}
		// 1/cos(u)^2 integrates to tan(u)
		if c, ok := n.Base.(*Call); ok && c.Fn == "cos" && len(c.Args) == 1 && isInt(n.Exp, -2) {
			if a, ok := linearCoefficient(c.Args[0], v); ok {
				return mul(ratNum(new(big.Rat).Inv(a)), call("tan", c.Args[0])), nil
			}
		}
		return nil, errNoAntiderivative
	}
	if !containsSym(n.Base, v) {
		a, ok := linearCoefficient(n.Exp, v)
		if !ok {
			return nil, errNoAntiderivative
		}
		inv := ratNum(new(big.Rat).Inv(a))
		if s, ok := n.Base.(*Sym); ok && s.Name == "e" {
			return mul(inv, n), nil
		}
		return mul(inv, n, pow(call("ln", n.Base), num(-1))), nil
	}
	return nil, errNoAntiderivative
}

func integrateCall(n *Call, v string) (Expr, error) {
	if len(n.Args) != 1 {
		return nil, errNoAntiderivative
	}
	u := n.Args[0]
	a, ok := linearCoefficient(u, v)
	if !ok {
		return nil, errNoAntiderivative
	}
	inv := ratNum(new(big.Rat).Inv(a))
	var f Expr
	switch n.Fn {
	case "sin":
		f = neg(call("cos", u))
	case "cos":
		f = call("sin", u)
	case "tan":
		f = neg(call("ln", call("abs", call("cos", u))))
	case "exp":
		f = call("exp", u)
	case "sinh":
		f = call("cosh", u)
	case "cosh":
		f = call("sinh", u)
	case "ln":
		f = sub(mul(u, call("ln", u)), u)
	case "log":
		f = mul(sub(mul(u, call("ln", u)), u), pow(call("ln", num(10)), num(-1)))
	default:
		return nil, fmt.Errorf("%w: %s", errNoAntiderivative, n.Fn)
	}
	return mul(inv, f), nil
}

// simpson approximates the integral of e over [a, b] with n subintervals.
func simpson(e Expr, v string, a, b float64, n int) (float64, error) {
	if n%2 == 1 {
		n++
	}
	h := (b - a) / float64(n)
	f := func(x float64) (float64, error) {
		return evalFloat(e, map[string]float64{v: x})
	}
	fa, err := f(a)
	if err != nil {
		return 0, err
	}
	fb, err := f(b)
	if err != nil {
		return 0, err
	}
	sum := fa + fb
	for i := 1; i < n; i++ {
		fx, err := f(a + float64(i)*h)
		if err != nil {
			return 0, err
		}
		if i%2 == 1 {
			sum += 4 * fx
		} else {
			sum += 2 * fx
		}
	}
	return sum * h / 3, nil
}
