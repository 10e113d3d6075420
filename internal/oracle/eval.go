package oracle

import (
	"fmt"
	"math"
	"math/big"
)

// maxExactExponent bounds integer powers evaluated with rationals.
const maxExactExponent = 256

// evalExact evaluates e with rational arithmetic. It fails for symbols,
// function calls other than abs, and powers whose result is irrational.
func evalExact(e Expr) (*big.Rat, bool) {
	switch n := e.(type) {
	case *Num:
		return n.V, true
	case *Add:
		sum := new(big.Rat)
		for _, t := range n.Terms {
			v, ok := evalExact(t)
			if !ok {
				return nil, false
			}
			sum.Add(sum, v)
		}
		return sum, true
	case *Mul:
		prod := big.NewRat(1, 1)
		for _, f := range n.Factors {
			v, ok := evalExact(f)
			if !ok {
				return nil, false
			}
			prod.Mul(prod, v)
		}
		return prod, true
	case *Pow:
		b, ok := evalExact(n.Base)
		if !ok {
			return nil, false
		}
		x, ok := evalExact(n.Exp)
		if !ok {
			return nil, false
		}
		return ratPow(b, x)
	case *Call:
		if n.Fn == "abs" && len(n.Args) == 1 {
			v, ok := evalExact(n.Args[0])
			if !ok {
				return nil, false
			}
			return new(big.Rat).Abs(v), true
		}
	}
	return nil, false
}

// ratPow raises b to a rational power when the result is rational.
func ratPow(b, x *big.Rat) (*big.Rat, bool) {
	if x.Sign() == 0 {
		return big.NewRat(1, 1), true
	}
	if b.Sign() == 0 {
		if x.Sign() < 0 {
			return nil, false
		}
		return new(big.Rat), true
	}
	if !x.Denom().IsInt64() || !x.Num().IsInt64() {
		return nil, false
	}
	p, q := x.Num().Int64(), x.Denom().Int64()
	base := b
	if q != 1 {
		root, ok := ratRoot(b, q)
		if !ok {
			return nil, false
		}
		base = root
	}
	return ratIntPow(base, p)
}

func ratIntPow(b *big.Rat, n int64) (*big.Rat, bool) {
	if n > maxExactExponent || n < -maxExactExponent {
		return nil, false
	}
	if n < 0 {
		if b.Sign() == 0 {
			return nil, false
		}
		b = new(big.Rat).Inv(b)
		n = -n
	}
	e := big.NewInt(n)
	num := new(big.Int).Exp(b.Num(), e, nil)
	den := new(big.Int).Exp(b.Denom(), e, nil)
	return new(big.Rat).SetFrac(num, den), true
}

// ratRoot returns the exact q-th root of r when one exists.
func ratRoot(r *big.Rat, q int64) (*big.Rat, bool) {
	negative := r.Sign() < 0
	if negative && q%2 == 0 {
		return nil, false
	}
	abs := new(big.Rat).Abs(r)
	n, ok := intRoot(abs.Num(), q)
	if !ok {
		return nil, false
	}
	d, ok := intRoot(abs.Denom(), q)
	if !ok {
		return nil, false
	}
	root := new(big.Rat).SetFrac(n, d)
	if negative {
		root.Neg(root)
	}
	return root, true
}

// intRoot returns the exact q-th root of n >= 0 when one exists.
func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if n.Cmp(big.NewInt(1)) <= 0 {
		return new(big.Int).Set(n), true
	}
	// Any integer c >= 2 has c^q >= 2^q, which exceeds n once q >= BitLen(n).
	if q >= int64(n.BitLen()) {
		return nil, false
	}
	if q == 2 {
		s := new(big.Int).Sqrt(n)
		if new(big.Int).Mul(s, s).Cmp(n) == 0 {
			return s, true
		}
		return nil, false
	}
	if n.BitLen() > 62 {
		return nil, false
	}
	guess := int64(math.Round(math.Pow(float64(n.Int64()), 1/float64(q))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		cand := big.NewInt(c)
		if new(big.Int).Exp(cand, big.NewInt(q), nil).Cmp(n) == 0 {
			return cand, true
		}
	}
	return nil, false
}

// evalFloat evaluates e numerically. env supplies values for variables.
func evalFloat(e Expr, env map[string]float64) (float64, error) {
	switch n := e.(type) {
	case *Num:
		f, _ := n.V.Float64()
		return f, nil
	case *Sym:
		if v, ok := env[n.Name]; ok {
			return v, nil
		}
		switch n.Name {
		case "pi":
			return math.Pi, nil
		case "e":
			return math.E, nil
		case "Infinity":
			return math.Inf(1), nil
		}
		return 0, fmt.Errorf("undefined symbol %q", n.Name)
	case *Add:
		sum := 0.0
		for _, t := range n.Terms {
			v, err := evalFloat(t, env)
			if err != nil {
				return 0, err
			}
			sum += v
		}
		return sum, nil
	case *Mul:
		prod := 1.0
		for _, f := range n.Factors {
			v, err := evalFloat(f, env)
			if err != nil {
				return 0, err
			}
			prod *= v
		}
		return prod, nil
	case *Pow:
		b, err := evalFloat(n.Base, env)
		if err != nil {
			return 0, err
		}
		x, err := evalFloat(n.Exp, env)
		if err != nil {
			return 0, err
		}
		// Odd roots of negative numbers are real.
		if r, ok := asNum(n.Exp); ok && b < 0 && !r.IsInt() && r.Denom().Bit(0) == 1 {
			v := math.Pow(-b, x)
			if r.Num().Bit(0) == 1 {
				return -v, nil
			}
			return v, nil
		}
		return math.Pow(b, x), nil
	case *Call:
		args := make([]float64, len(n.Args))
		for i, a := range n.Args {
			v, err := evalFloat(a, env)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return applyFunc(n.Fn, args)
	}
	return 0, fmt.Errorf("cannot evaluate expression")
}

func applyFunc(fn string, args []float64) (float64, error) {
	if fn == "binomial" {
		if len(args) != 2 {
			return 0, fmt.Errorf("binomial takes two arguments, got %d", len(args))
		}
		return binomial(args[0], args[1])
	}
	if fn == "log" && len(args) == 2 {
		return math.Log(args[0]) / math.Log(args[1]), nil
	}
	if len(args) != 1 {
		return 0, fmt.Errorf("%s takes one argument, got %d", fn, len(args))
	}
	x := args[0]
	switch fn {
	case "sin":
		return math.Sin(x), nil
	case "cos":
		return math.Cos(x), nil
	case "tan":
		return math.Tan(x), nil
	case "cot":
		return 1 / math.Tan(x), nil
	case "sec":
		return 1 / math.Cos(x), nil
	case "csc":
		return 1 / math.Sin(x), nil
	case "asin":
		return math.Asin(x), nil
	case "acos":
		return math.Acos(x), nil
	case "atan":
		return math.Atan(x), nil
	case "sinh":
		return math.Sinh(x), nil
	case "cosh":
		return math.Cosh(x), nil
	case "tanh":
		return math.Tanh(x), nil
	case "exp":
		return math.Exp(x), nil
	case "ln":
		return math.Log(x), nil
	case "log":
		return math.Log10(x), nil
	case "abs":
		return math.Abs(x), nil
	case "floor":
		return math.Floor(x), nil
	case "ceil":
		return math.Ceil(x), nil
	case "sign":
		switch {
		case x > 0:
			return 1, nil
		case x < 0:
			return -1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unknown function %q", fn)
}

func binomial(n, k float64) (float64, error) {
	if n != math.Trunc(n) || k != math.Trunc(k) || k < 0 || n < 0 {
		return 0, fmt.Errorf("binomial requires non-negative integers")
	}
	if k > n {
		return 0, nil
	}
	v, _ := new(big.Float).SetInt(new(big.Int).Binomial(int64(n), int64(k))).Float64()
	return v, nil
}

// numericValue evaluates e exactly when possible and numerically otherwise.
func numericValue(e Expr, env map[string]float64) (float64, error) {
	if len(env) == 0 {
		if r, ok := evalExact(e); ok {
			f, _ := r.Float64()
			return f, nil
		}
	}
	return evalFloat(e, env)
}
