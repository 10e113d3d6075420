package oracle

import (
	"math/big"
	"sort"
)

// Simplify rewrites e into a canonical form: constants folded, like terms and
// like factors combined, nested sums and products flattened.
func Simplify(e Expr) Expr {
	switch n := e.(type) {
	case *Add:
		terms := make([]Expr, len(n.Terms))
		for i, t := range n.Terms {
			terms[i] = Simplify(t)
		}
		return simplifyAdd(terms)
	case *Mul:
		factors := make([]Expr, len(n.Factors))
		for i, f := range n.Factors {
			factors[i] = Simplify(f)
		}
		return simplifyMul(factors)
	case *Pow:
		return simplifyPow(Simplify(n.Base), Simplify(n.Exp))
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Simplify(a)
		}
		return simplifyCall(n.Fn, args)
	}
	return e
}

func simplifyPow(base, exp Expr) Expr {
	if isInt(exp, 0) {
		return num(1)
	}
	if isInt(exp, 1) {
		return base
	}
	if isInt(base, 1) {
		return num(1)
	}
	if b, ok := asNum(base); ok {
		if x, ok := asNum(exp); ok {
			if r, ok := ratPow(b, x); ok {
				return &Num{V: r}
			}
		}
	}
	x, expIsNum := asNum(exp)
	if p, ok := base.(*Pow); ok && expIsNum && x.IsInt() {
		if inner, ok := asNum(p.Exp); ok {
			return simplifyPow(p.Base, &Num{V: new(big.Rat).Mul(inner, x)})
		}
	}
	if m, ok := base.(*Mul); ok && expIsNum && x.IsInt() {
		factors := make([]Expr, len(m.Factors))
		for i, f := range m.Factors {
			factors[i] = simplifyPow(f, exp)
		}
		return simplifyMul(factors)
	}
	if c, ok := base.(*Call); ok && c.Fn == "exp" && len(c.Args) == 1 {
		return simplifyCall("exp", []Expr{simplifyMul([]Expr{c.Args[0], exp})})
	}
	return &Pow{Base: base, Exp: exp}
}

func flattenMul(factors []Expr) []Expr {
	var out []Expr
	for _, f := range factors {
		if m, ok := f.(*Mul); ok {
			out = append(out, flattenMul(m.Factors)...)
			continue
		}
		out = append(out, f)
	}
	return out
}

func simplifyMul(factors []Expr) Expr {
	factors = flattenMul(factors)
	coef := big.NewRat(1, 1)

	type group struct {
		base Expr
		exps []Expr
	}
	var order []string
	groups := make(map[string]*group)
	for _, f := range factors {
		if r, ok := asNum(f); ok {
			coef.Mul(coef, r)
			continue
		}
		base, exp := f, Expr(num(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.Base, p.Exp
		}
		key := String(base)
		g, ok := groups[key]
		if !ok {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coef.Sign() == 0 {
		return num(0)
	}

	var rest []Expr
	for _, key := range order {
		g := groups[key]
		exp := simplifyAdd(g.exps)
		p := simplifyPow(g.base, exp)
		for _, f := range flattenMul([]Expr{p}) {
			if r, ok := asNum(f); ok {
				coef.Mul(coef, r)
				continue
			}
			rest = append(rest, f)
		}
	}
	if coef.Sign() == 0 {
		return num(0)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		ri, rj := factorRank(rest[i]), factorRank(rest[j])
		if ri != rj {
			return ri < rj
		}
		return String(rest[i]) < String(rest[j])
	})

	if len(rest) == 0 {
		return &Num{V: coef}
	}
	if coef.Cmp(big.NewRat(1, 1)) == 0 {
		if len(rest) == 1 {
			return rest[0]
		}
		return &Mul{Factors: rest}
	}
	return &Mul{Factors: append([]Expr{&Num{V: coef}}, rest...)}
}

// factorRank orders factors so variables and their powers come before sums and calls.
func factorRank(e Expr) int {
	switch n := e.(type) {
	case *Sym:
		return 0
	case *Pow:
		if _, ok := n.Base.(*Sym); ok {
			if _, ok := asNum(n.Exp); ok {
				return 0
			}
		}
		return 1
	case *Add:
		return 2
	}
	return 3
}

// splitCoefficient separates a term into a rational coefficient and the remaining product.
func splitCoefficient(e Expr) (*big.Rat, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return big.NewRat(1, 1), e
	}
	coef := big.NewRat(1, 1)
	var rest []Expr
	for _, f := range m.Factors {
		if r, ok := asNum(f); ok {
			coef.Mul(coef, r)
			continue
		}
		rest = append(rest, f)
	}
	switch len(rest) {
	case 0:
		return coef, num(1)
	case 1:
		return coef, rest[0]
	}
	return coef, &Mul{Factors: rest}
}

func flattenAdd(terms []Expr) []Expr {
	var out []Expr
	for _, t := range terms {
		if a, ok := t.(*Add); ok {
			out = append(out, flattenAdd(a.Terms)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

func simplifyAdd(terms []Expr) Expr {
	terms = flattenAdd(terms)
	constant := new(big.Rat)

	type group struct {
		rest Expr
		coef *big.Rat
	}
	var order []string
	groups := make(map[string]*group)
	for _, t := range terms {
		if r, ok := asNum(t); ok {
			constant.Add(constant, r)
			continue
		}
		coef, rest := splitCoefficient(t)
		key := String(rest)
		g, ok := groups[key]
		if !ok {
			g = &group{rest: rest, coef: new(big.Rat)}
			groups[key] = g
			order = append(order, key)
		}
		g.coef.Add(g.coef, coef)
	}

	var out []Expr
	for _, key := range order {
		g := groups[key]
		if g.coef.Sign() == 0 {
			continue
		}
		if g.coef.Cmp(big.NewRat(1, 1)) == 0 {
			out = append(out, g.rest)
			continue
		}
		out = append(out, simplifyMul([]Expr{&Num{V: g.coef}, g.rest}))
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := termDegree(out[i]), termDegree(out[j])
		if di.Cmp(dj) != 0 {
			return di.Cmp(dj) > 0
		}
		_, ri := splitCoefficient(out[i])
		_, rj := splitCoefficient(out[j])
		return String(ri) < String(rj)
	})
	if constant.Sign() != 0 {
		out = append(out, &Num{V: constant})
	}

	switch len(out) {
	case 0:
		return num(0)
	case 1:
		return out[0]
	}
	return &Add{Terms: out}
}

// termDegree is the total numeric degree of the plain variables in a term.
func termDegree(e Expr) *big.Rat {
	deg := new(big.Rat)
	var visit func(Expr)
	visit = func(f Expr) {
		switch n := f.(type) {
		case *Sym:
			if !constants[n.Name] {
				deg.Add(deg, big.NewRat(1, 1))
			}
		case *Pow:
			if s, ok := n.Base.(*Sym); ok && !constants[s.Name] {
				if x, ok := asNum(n.Exp); ok {
					deg.Add(deg, x)
				}
			}
		case *Mul:
			for _, g := range n.Factors {
				visit(g)
			}
		}
	}
	visit(e)
	return deg
}

func simplifyCall(fn string, args []Expr) Expr {
	if len(args) == 1 {
		arg := args[0]
		if r, ok := asNum(arg); ok {
			if v, ok := exactCall(fn, r); ok {
				return v
			}
		}
		switch fn {
		case "ln":
			if s, ok := arg.(*Sym); ok && s.Name == "e" {
				return num(1)
			}
			if c, ok := arg.(*Call); ok && c.Fn == "exp" && len(c.Args) == 1 {
				return c.Args[0]
			}
		case "exp":
			if c, ok := arg.(*Call); ok && c.Fn == "ln" && len(c.Args) == 1 {
				return c.Args[0]
			}
		case "sin", "tan", "asin", "atan", "sinh", "tanh":
			// odd functions
			if isNegative(arg) {
				return simplifyMul([]Expr{num(-1), &Call{Fn: fn, Args: []Expr{Simplify(negate(arg))}}})
			}
		case "cos", "cosh", "abs":
			if isNegative(arg) {
				return &Call{Fn: fn, Args: []Expr{Simplify(negate(arg))}}
			}
		}
	}
	if fn == "binomial" && len(args) == 2 {
		n, ok1 := asNum(args[0])
		k, ok2 := asNum(args[1])
		if ok1 && ok2 && n.IsInt() && k.IsInt() && n.Sign() >= 0 && k.Sign() >= 0 &&
			n.Num().IsInt64() && k.Num().IsInt64() {
			return &Num{V: new(big.Rat).SetInt(new(big.Int).Binomial(n.Num().Int64(), k.Num().Int64()))}
		}
	}
	return &Call{Fn: fn, Args: args}
}

// exactCall folds function values that are rational at a rational argument.
func exactCall(fn string, r *big.Rat) (Expr, bool) {
	zero := r.Sign() == 0
	one := r.Cmp(big.NewRat(1, 1)) == 0
	switch fn {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if zero {
			return num(0), true
		}
	case "cos", "cosh", "exp":
		if zero {
			return num(1), true
		}
	case "acos", "ln":
		if one {
			return num(0), true
		}
	case "log":
		if one {
			return num(0), true
		}
		if r.IsInt() && r.Sign() > 0 {
			n := new(big.Int).Set(r.Num())
			ten := big.NewInt(10)
			power := int64(0)
			for n.Cmp(big.NewInt(1)) > 0 {
				q, m := new(big.Int).QuoRem(n, ten, new(big.Int))
				if m.Sign() != 0 {
					return nil, false
				}
				n = q
				power++
			}
			return num(power), true
		}
	case "abs":
		return &Num{V: new(big.Rat).Abs(r)}, true
	case "floor", "ceil":
		q := new(big.Int).Quo(r.Num(), r.Denom())
		if !r.IsInt() {
			if fn == "floor" && r.Sign() < 0 {
				q.Sub(q, big.NewInt(1))
			}
			if fn == "ceil" && r.Sign() > 0 {
				q.Add(q, big.NewInt(1))
			}
		}
		return &Num{V: new(big.Rat).SetInt(q)}, true
	case "sign":
		return num(int64(r.Sign())), true
	}
	return nil, false
}
