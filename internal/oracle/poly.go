package oracle

import (
	"math/big"
	"sort"
)

const maxPolyDegree = 64

// poly is a univariate polynomial with exact coefficients, keyed by degree.
type poly map[int]*big.Rat

// toPoly converts e into a polynomial in v. It fails when e contains any other
// symbol, a function call, or a non-integer power of v.
func toPoly(e Expr, v string) (poly, bool) {
	switch n := e.(type) {
	case *Num:
		return poly{0: new(big.Rat).Set(n.V)}.trim(), true
	case *Sym:
		if n.Name == v {
			return poly{1: big.NewRat(1, 1)}, true
		}
		return nil, false
	case *Add:
		sum := poly{}
		for _, t := range n.Terms {
			p, ok := toPoly(t, v)
			if !ok {
				return nil, false
			}
			sum = sum.add(p)
		}
		return sum, true
	case *Mul:
		prod := poly{0: big.NewRat(1, 1)}
		for _, f := range n.Factors {
			p, ok := toPoly(f, v)
			if !ok {
				return nil, false
			}
			prod = prod.mul(p)
			if prod.degree() > maxPolyDegree {
				return nil, false
			}
		}
		return prod, true
	case *Pow:
		x, ok := asNum(n.Exp)
		if !ok || !x.IsInt() || x.Sign() < 0 || !x.Num().IsInt64() {
			return nil, false
		}
		k := x.Num().Int64()
		base, ok := toPoly(n.Base, v)
		if !ok {
			return nil, false
		}
		if base.degree()*int(k) > maxPolyDegree {
			return nil, false
		}
		out := poly{0: big.NewRat(1, 1)}
		for i := int64(0); i < k; i++ {
			out = out.mul(base)
		}
		return out, true
	}
	return nil, false
}

func (p poly) trim() poly {
	for d, c := range p {
		if c.Sign() == 0 {
			delete(p, d)
		}
	}
	return p
}

// degree returns the highest degree with a nonzero coefficient, or -1 for the zero polynomial.
func (p poly) degree() int {
	deg := -1
	for d, c := range p {
		if c.Sign() != 0 && d > deg {
			deg = d
		}
	}
	return deg
}

func (p poly) coeff(d int) *big.Rat {
	if c, ok := p[d]; ok {
		return c
	}
	return new(big.Rat)
}

func (p poly) add(q poly) poly {
	out := poly{}
	for d, c := range p {
		out[d] = new(big.Rat).Set(c)
	}
	for d, c := range q {
		if cur, ok := out[d]; ok {
			cur.Add(cur, c)
		} else {
			out[d] = new(big.Rat).Set(c)
		}
	}
	return out.trim()
}

func (p poly) mul(q poly) poly {
	out := poly{}
	for d1, c1 := range p {
		for d2, c2 := range q {
			term := new(big.Rat).Mul(c1, c2)
			if cur, ok := out[d1+d2]; ok {
				cur.Add(cur, term)
			} else {
				out[d1+d2] = term
			}
		}
	}
	return out.trim()
}

func (p poly) deriv() poly {
	out := poly{}
	for d, c := range p {
		if d == 0 {
			continue
		}
		out[d-1] = new(big.Rat).Mul(c, big.NewRat(int64(d), 1))
	}
	return out.trim()
}

// antideriv integrates term by term with a zero constant.
func (p poly) antideriv() poly {
	out := poly{}
	for d, c := range p {
		out[d+1] = new(big.Rat).Quo(c, big.NewRat(int64(d+1), 1))
	}
	return out.trim()
}

func (p poly) eval(x *big.Rat) *big.Rat {
	sum := new(big.Rat)
	for d := p.degree(); d >= 0; d-- {
		sum.Mul(sum, x)
		sum.Add(sum, p.coeff(d))
	}
	return sum
}

func (p poly) evalFloat(x float64) float64 {
	sum := 0.0
	for d := p.degree(); d >= 0; d-- {
		c, _ := p.coeff(d).Float64()
		sum = sum*x + c
	}
	return sum
}

// divRoot divides p by (v - r), assuming r is a root.
func (p poly) divRoot(r *big.Rat) poly {
	deg := p.degree()
	out := poly{}
	carry := new(big.Rat)
	for d := deg; d >= 1; d-- {
		carry = new(big.Rat).Add(new(big.Rat).Mul(carry, r), p.coeff(d))
		out[d-1] = carry
	}
	return out.trim()
}

// toExpr builds the canonical sum of terms in descending degree.
func (p poly) toExpr(v string) Expr {
	degrees := make([]int, 0, len(p))
	for d, c := range p {
		if c.Sign() != 0 {
			degrees = append(degrees, d)
		}
	}
	if len(degrees) == 0 {
		return num(0)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))
	terms := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		c := p[d]
		var base Expr
		switch d {
		case 0:
			terms = append(terms, ratNum(c))
			continue
		case 1:
			base = sym(v)
		default:
			base = pow(sym(v), num(int64(d)))
		}
		if c.Cmp(big.NewRat(1, 1)) == 0 {
			terms = append(terms, base)
		} else {
			terms = append(terms, mul(ratNum(c), base))
		}
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &Add{Terms: terms}
}

// rationalRoots finds every rational root of p with multiplicity and returns the
// roots together with the quotient left after dividing them out.
func (p poly) rationalRoots() ([]*big.Rat, poly) {
	var roots []*big.Rat
	rest := p
	for rest.degree() > 0 && rest.coeff(0).Sign() == 0 {
		roots = append(roots, new(big.Rat))
		rest = rest.divRoot(new(big.Rat))
	}
	if rest.degree() <= 0 {
		return roots, rest
	}

	ints := rest.integerCoefficients()
	lead := new(big.Int).Abs(ints[rest.degree()])
	constant := new(big.Int).Abs(ints[0])
	ps, ok1 := divisors(constant)
	qs, ok2 := divisors(lead)
	if !ok1 || !ok2 {
		return roots, rest
	}
	var candidates []*big.Rat
	seen := make(map[string]bool)
	for _, pp := range ps {
		for _, qq := range qs {
			for _, sign := range []int64{1, -1} {
				c := new(big.Rat).SetFrac(new(big.Int).Mul(big.NewInt(sign), pp), qq)
				if key := c.RatString(); !seen[key] {
					seen[key] = true
					candidates = append(candidates, c)
				}
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Cmp(candidates[j]) < 0 })

	for _, c := range candidates {
		for rest.degree() > 0 && rest.eval(c).Sign() == 0 {
			roots = append(roots, c)
			rest = rest.divRoot(c)
		}
	}
	return roots, rest
}

// integerCoefficients scales p by the common denominator, indexed by degree.
func (p poly) integerCoefficients() []*big.Int {
	deg := p.degree()
	lcm := big.NewInt(1)
	for d := 0; d <= deg; d++ {
		den := p.coeff(d).Denom()
		g := new(big.Int).GCD(nil, nil, lcm, den)
		lcm.Mul(lcm, new(big.Int).Quo(den, g))
	}
	out := make([]*big.Int, deg+1)
	for d := 0; d <= deg; d++ {
		scaled := new(big.Rat).Mul(p.coeff(d), new(big.Rat).SetInt(lcm))
		out[d] = new(big.Int).Set(scaled.Num())
	}
	return out
}

const maxDivisorSearch = 1_000_000

// divisors lists the positive divisors of n, giving up for large n.
func divisors(n *big.Int) ([]*big.Int, bool) {
	if !n.IsInt64() || n.Int64() > maxDivisorSearch*maxDivisorSearch {
		return nil, false
	}
	v := n.Int64()
	if v == 0 {
		return nil, false
	}
	var small, large []*big.Int
	for i := int64(1); i*i <= v; i++ {
		if v%i == 0 {
			small = append(small, big.NewInt(i))
			if i != v/i {
				large = append([]*big.Int{big.NewInt(v / i)}, large...)
			}
		}
	}
	return append(small, large...), true
}
