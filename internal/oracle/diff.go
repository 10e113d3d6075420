package oracle

import "fmt"

// Diff returns the simplified derivative of e with respect to v.
func Diff(e Expr, v string) (Expr, error) {
	d, err := diff(e, v)
	if err != nil {
		return nil, err
	}
	return Simplify(d), nil
}

func diff(e Expr, v string) (Expr, error) {
	if !containsSym(e, v) {
		return num(0), nil
	}
	switch n := e.(type) {
	case *Sym:
		return num(1), nil
	case *Add:
		terms := make([]Expr, len(n.Terms))
		for i, t := range n.Terms {
			d, err := diff(t, v)
			if err != nil {
				return nil, err
			}
			terms[i] = d
		}
		return &Add{Terms: terms}, nil
	case *Mul:
		// product rule over all factors
		terms := make([]Expr, 0, len(n.Factors))
		for i := range n.Factors {
			d, err := diff(n.Factors[i], v)
			if err != nil {
				return nil, err
			}
			factors := make([]Expr, 0, len(n.Factors))
			for j, f := range n.Factors {
				if i == j {
					factors = append(factors, d)
				} else {
					factors = append(factors, f)
				}
			}
			terms = append(terms, &Mul{Factors: factors})
		}
		return &Add{Terms: terms}, nil
	case *Pow:
		return diffPow(n, v)
	case *Call:
		return diffCall(n, v)
	}
	return nil, fmt.Errorf("cannot differentiate %s", String(e))
}

func diffPow(n *Pow, v string) (Expr, error) {
	db, err := diff(n.Base, v)
	if err != nil {
		return nil, err
	}
	if !containsSym(n.Exp, v) {
		// d(u^c) = c*u^(c-1)*u'
		return mul(n.Exp, pow(n.Base, add(n.Exp, num(-1))), db), nil
	}
	de, err := diff(n.Exp, v)
	if err != nil {
		return nil, err
	}
	if !containsSym(n.Base, v) {
		// d(a^u) = a^u*ln(a)*u'
		return mul(n, call("ln", n.Base), de), nil
	}
	// d(u^w) = u^w*(w'*ln(u) + w*u'/u)
	return mul(n, add(mul(de, call("ln", n.Base)), mul(n.Exp, db, pow(n.Base, num(-1))))), nil
}

func diffCall(n *Call, v string) (Expr, error) {
	if n.Fn == "log" && len(n.Args) == 2 {
		// log(u, b) = ln(u)/ln(b)
		return diff(div(call("ln", n.Args[0]), call("ln", n.Args[1])), v)
	}
	if len(n.Args) != 1 {
		return nil, fmt.Errorf("cannot differentiate %s", String(n))
	}
	u := n.Args[0]
	du, err := diff(u, v)
	if err != nil {
		return nil, err
	}
	var outer Expr
	switch n.Fn {
	case "sin":
		outer = call("cos", u)
	case "cos":
		outer = neg(call("sin", u))
	case "tan":
		outer = pow(call("cos", u), num(-2))
	case "cot":
		outer = neg(pow(call("sin", u), num(-2)))
	case "sec":
		outer = mul(call("sec", u), call("tan", u))
	case "csc":
		outer = neg(mul(call("csc", u), call("cot", u)))
	case "asin":
		outer = pow(sub(num(1), pow(u, num(2))), frac(-1, 2))
	case "acos":
		outer = neg(pow(sub(num(1), pow(u, num(2))), frac(-1, 2)))
	case "atan":
		outer = pow(add(num(1), pow(u, num(2))), num(-1))
	case "sinh":
		outer = call("cosh", u)
	case "cosh":
		outer = call("sinh", u)
	case "tanh":
		outer = pow(call("cosh", u), num(-2))
	case "exp":
		outer = call("exp", u)
	case "ln":
		outer = pow(u, num(-1))
	case "log":
		outer = pow(mul(u, call("ln", num(10))), num(-1))
	case "abs":
		outer = call("sign", u)
	default:
		return nil, fmt.Errorf("cannot differentiate function %s", n.Fn)
	}
	return mul(outer, du), nil
}
