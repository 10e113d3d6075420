// Package oracle is the symbolic mathematics backend used by the solver: it
// parses infix formulas, simplifies, evaluates, differentiates, integrates,
// factors and solves them.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ErrOracle is the sentinel every Engine failure matches with errors.Is.
var ErrOracle = errors.New("oracle failure")

// Error records which oracle operation failed on which input.
type Error struct {
	Op    string
	Input string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Input, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrOracle.
func (e *Error) Is(target error) bool { return target == ErrOracle }

// Bounds are the limits of a definite integral, as expressions.
type Bounds struct {
	Lower string
	Upper string
}

// Oracle is the set of symbolic operations the solver relies on. Every method
// may fail; failures wrap ErrOracle.
type Oracle interface {
	Solve(ctx context.Context, expr, variable string) ([]string, error)
	Simplify(ctx context.Context, expr string) (string, error)
	Evaluate(ctx context.Context, expr string) (float64, error)
	Differentiate(ctx context.Context, expr, variable string) (string, error)
	Integrate(ctx context.Context, expr, variable string, bounds *Bounds) (string, error)
	Factor(ctx context.Context, expr string) (string, error)
}

// Engine is the in-process Oracle. The zero value is ready to use.
type Engine struct{}

// NewEngine returns an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

var _ Oracle = (*Engine)(nil)

func fail(op, input string, err error) error {
	return &Error{Op: op, Input: input, Err: err}
}

// parseInput parses expr, treating a single "=" as left minus right.
func parseInput(expr string) (Expr, error) {
	if i := strings.Index(expr, "="); i >= 0 {
		left, err := Parse(expr[:i])
		if err != nil {
			return nil, err
		}
		right, err := Parse(expr[i+1:])
		if err != nil {
			return nil, err
		}
		return sub(left, right), nil
	}
	return Parse(expr)
}

// Solve returns the real roots of expr = 0 (or of left = right) in variable.
// An equation with no real roots yields an empty slice and no error.
func (*Engine) Solve(ctx context.Context, expr, variable string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fail("solve", expr, err)
	}
	e, err := parseInput(expr)
	if err != nil {
		return nil, fail("solve", expr, err)
	}
	roots, err := solveRoots(ctx, e, variable)
	if err != nil {
		return nil, fail("solve", expr, err)
	}
	return roots, nil
}

// Simplify returns the canonical form of expr. Polynomials in one variable are
// printed in descending degree.
func (*Engine) Simplify(ctx context.Context, expr string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fail("simplify", expr, err)
	}
	e, err := Parse(expr)
	if err != nil {
		return "", fail("simplify", expr, err)
	}
	return String(canonical(Simplify(e))), nil
}

// canonical rewrites a univariate polynomial into its ordered sum of terms.
func canonical(e Expr) Expr {
	vars := FreeSymbols(e)
	if len(vars) != 1 {
		return e
	}
	if p, ok := toPoly(e, vars[0]); ok {
		return Simplify(p.toExpr(vars[0]))
	}
	return e
}

// Evaluate computes the numeric value of a closed expression. Rational
// arithmetic is used whenever the expression allows it.
func (*Engine) Evaluate(ctx context.Context, expr string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fail("evaluate", expr, err)
	}
	e, err := Parse(expr)
	if err != nil {
		return 0, fail("evaluate", expr, err)
	}
	v, err := numericValue(e, nil)
	if err != nil {
		return 0, fail("evaluate", expr, err)
	}
	if !isFinite(v) {
		return 0, fail("evaluate", expr, fmt.Errorf("result is not a finite number"))
	}
	return v, nil
}

// Differentiate returns d(expr)/d(variable) in canonical form.
func (*Engine) Differentiate(ctx context.Context, expr, variable string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fail("differentiate", expr, err)
	}
	e, err := Parse(expr)
	if err != nil {
		return "", fail("differentiate", expr, err)
	}
	d, err := Diff(e, variable)
	if err != nil {
		return "", fail("differentiate", expr, err)
	}
	return String(canonical(d)), nil
}

// Integrate returns an antiderivative of expr, or the numeric value of the
// definite integral when bounds are given. Definite integrals without an
// elementary antiderivative fall back to Simpson's rule.
func (*Engine) Integrate(ctx context.Context, expr, variable string, bounds *Bounds) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fail("integrate", expr, err)
	}
	e, err := Parse(expr)
	if err != nil {
		return "", fail("integrate", expr, err)
	}
	anti, antiErr := Antiderivative(e, variable)
	if bounds == nil {
		if antiErr != nil {
			return "", fail("integrate", expr, antiErr)
		}
		return String(canonical(anti)), nil
	}

	lower, err := boundValue(bounds.Lower)
	if err != nil {
		return "", fail("integrate", expr, err)
	}
	upper, err := boundValue(bounds.Upper)
	if err != nil {
		return "", fail("integrate", expr, err)
	}
	var value float64
	if antiErr == nil {
		value, err = definite(anti, variable, lower, upper)
	}
	if antiErr != nil || err != nil {
		value, err = simpson(Simplify(e), variable, lower, upper, 2000)
	}
	if err != nil {
		return "", fail("integrate", expr, err)
	}
	if !isFinite(value) {
		return "", fail("integrate", expr, fmt.Errorf("integral does not converge"))
	}
	return formatFloat(value), nil
}

func boundValue(s string) (float64, error) {
	e, err := Parse(s)
	if err != nil {
		return 0, fmt.Errorf("bound %q: %w", s, err)
	}
	return numericValue(e, nil)
}

func definite(anti Expr, v string, lower, upper float64) (float64, error) {
	fu, err := evalFloat(anti, map[string]float64{v: upper})
	if err != nil {
		return 0, err
	}
	fl, err := evalFloat(anti, map[string]float64{v: lower})
	if err != nil {
		return 0, err
	}
	if !isFinite(fu) || !isFinite(fl) {
		return 0, fmt.Errorf("antiderivative undefined at a bound")
	}
	val := fu - fl
	if math.Abs(val-math.Round(val)) < 1e-12 {
		val = math.Round(val)
	}
	return val, nil
}

// Factor rewrites a univariate polynomial as a product over its rational
// roots. Anything else is returned simplified.
func (*Engine) Factor(ctx context.Context, expr string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fail("factor", expr, err)
	}
	e, err := Parse(expr)
	if err != nil {
		return "", fail("factor", expr, err)
	}
	e = Simplify(e)
	vars := FreeSymbols(e)
	if len(vars) != 1 {
		return String(e), nil
	}
	v := vars[0]
	p, ok := toPoly(e, v)
	if !ok || p.degree() < 2 {
		return String(canonical(e)), nil
	}
	roots, rest := p.rationalRoots()
	if len(roots) == 0 {
		return String(canonical(e)), nil
	}
	return String(factored(p.coeff(p.degree()), roots, rest, v)), nil
}

// factored builds lead*(v - r1)^m1*...*remainder without re-simplifying, so the
// factor order is preserved. Equal roots are adjacent in roots.
func factored(lead *big.Rat, roots []*big.Rat, rest poly, v string) Expr {
	var factors []Expr
	if lead.Cmp(big.NewRat(1, 1)) != 0 {
		factors = append(factors, ratNum(lead))
	}
	for i := 0; i < len(roots); {
		j := i
		for j < len(roots) && roots[j].Cmp(roots[i]) == 0 {
			j++
		}
		var f Expr = sym(v)
		if roots[i].Sign() != 0 {
			f = &Add{Terms: []Expr{sym(v), ratNum(new(big.Rat).Neg(roots[i]))}}
		}
		if m := j - i; m > 1 {
			f = pow(f, num(int64(m)))
		}
		factors = append(factors, f)
		i = j
	}
	if rest.degree() >= 1 {
		monic := rest.mul(poly{0: new(big.Rat).Inv(lead)})
		factors = append(factors, monic.toExpr(v))
	}
	if len(factors) == 1 {
		return factors[0]
	}
	return &Mul{Factors: factors}
}
