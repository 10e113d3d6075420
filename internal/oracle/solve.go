package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
)

// Scan window and resolution for equations with no polynomial form. The
// window starts at [-scanMax, scanMax] and widens tenfold up to scanLimit.
const (
	scanMax       = 100.0
	scanLimit     = 1e6
	scanSteps     = 4000
	bisectRounds  = 200
	rootTolerance = 1e-7
	snapTolerance = 1e-9
)

// errIdentity is returned when every value of the variable satisfies the equation.
var errIdentity = errors.New("equation holds for every value")

// ErrNoRootFound means a numeric search found no root. It does not prove that
// none exists.
var ErrNoRootFound = fmt.Errorf("no root found in [%g, %g]", -scanLimit, scanLimit)

// solveRoots returns the real roots of e = 0 in v, formatted as text.
func solveRoots(ctx context.Context, e Expr, v string) ([]string, error) {
	e = Simplify(e)
	if !containsSym(e, v) {
		r, ok := evalExact(e)
		if !ok {
			if others := FreeSymbols(e); len(others) > 0 {
				return nil, fmt.Errorf("expression does not contain %s", v)
			}
			f, err := evalFloat(e, nil)
			if err != nil {
				return nil, err
			}
			if math.Abs(f) <= snapTolerance {
				return nil, errIdentity
			}
			return []string{}, nil
		}
		if r.Sign() == 0 {
			return nil, errIdentity
		}
		return []string{}, nil
	}
	if others := otherSymbols(e, v); len(others) > 0 {
		return nil, fmt.Errorf("cannot solve for %s with unknowns %v", v, others)
	}
	if p, ok := toPoly(e, v); ok {
		return solvePoly(ctx, p)
	}
	roots, err := scanWidening(ctx, func(x float64) (float64, error) {
		return evalFloat(e, map[string]float64{v: x})
	})
	if err != nil {
		return nil, err
	}
	return formatFloats(roots), nil
}

// scanWidening scans [-scanMax, scanMax], then the bands on either side of the
// searched window at ten times its width, until a root turns up or the window
// reaches scanLimit.
func scanWidening(ctx context.Context, f func(float64) (float64, error)) ([]float64, error) {
	roots, err := scanRoots(ctx, f, -scanMax, scanMax)
	if err != nil || len(roots) > 0 {
		return roots, err
	}
	for inner := scanMax; inner < scanLimit; inner *= 10 {
		outer := inner * 10
		left, err := scanRoots(ctx, f, -outer, -inner)
		if err != nil {
			return nil, err
		}
		right, err := scanRoots(ctx, f, inner, outer)
		if err != nil {
			return nil, err
		}
		if roots = append(left, right...); len(roots) > 0 {
			return roots, nil
		}
	}
	return nil, ErrNoRootFound
}

func otherSymbols(e Expr, v string) []string {
	var out []string
	for _, name := range FreeSymbols(e) {
		if name != v {
			out = append(out, name)
		}
	}
	return out
}

func solvePoly(ctx context.Context, p poly) ([]string, error) {
	switch p.degree() {
	case -1:
		return nil, errIdentity
	case 0:
		return []string{}, nil
	}
	roots, rest := p.rationalRoots()
	out := make([]string, 0, p.degree())
	seen := make(map[string]bool)
	addRoot := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, r := range roots {
		addRoot(ratText(r))
	}
	switch rest.degree() {
	case -1, 0:
	case 1:
		addRoot(ratText(new(big.Rat).Neg(new(big.Rat).Quo(rest.coeff(0), rest.coeff(1)))))
	case 2:
		for _, r := range quadraticRoots(rest) {
			addRoot(r)
		}
	default:
		bound := cauchyBound(rest)
		floats, err := scanRoots(ctx, func(x float64) (float64, error) {
			return rest.evalFloat(x), nil
		}, -bound, bound)
		if err != nil {
			return nil, err
		}
		for _, r := range formatFloats(floats) {
			addRoot(r)
		}
	}
	return out, nil
}

func ratText(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}

// quadraticRoots returns the real roots of a*v^2 + b*v + c, exact when the discriminant is a perfect square.
func quadraticRoots(p poly) []string {
	a, b, c := p.coeff(2), p.coeff(1), p.coeff(0)
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	if disc.Sign() < 0 {
		return nil
	}
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	negB := new(big.Rat).Neg(b)
	if s, ok := ratRoot(disc, 2); ok {
		r1 := new(big.Rat).Quo(new(big.Rat).Sub(negB, s), twoA)
		r2 := new(big.Rat).Quo(new(big.Rat).Add(negB, s), twoA)
		if r1.Cmp(r2) > 0 {
			r1, r2 = r2, r1
		}
		if r1.Cmp(r2) == 0 {
			return []string{ratText(r1)}
		}
		return []string{ratText(r1), ratText(r2)}
	}
	df, _ := disc.Float64()
	nb, _ := negB.Float64()
	ta, _ := twoA.Float64()
	r1 := (nb - math.Sqrt(df)) / ta
	r2 := (nb + math.Sqrt(df)) / ta
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return []string{formatFloat(r1), formatFloat(r2)}
}

// cauchyBound bounds the absolute value of every root of p.
func cauchyBound(p poly) float64 {
	deg := p.degree()
	lead, _ := p.coeff(deg).Float64()
	bound := 0.0
	for d := 0; d < deg; d++ {
		c, _ := p.coeff(d).Float64()
		bound = math.Max(bound, math.Abs(c/lead))
	}
	return math.Min(1+bound, 1e6)
}

// scanRoots samples f on [lo, hi], bisects every sign change and keeps the
// points where f is close to zero; sign changes across poles are rejected.
func scanRoots(ctx context.Context, f func(float64) (float64, error), lo, hi float64) ([]float64, error) {
	step := (hi - lo) / scanSteps
	var roots []float64
	prevX := lo
	prevY, prevErr := f(lo)
	prevOK := prevErr == nil && isFinite(prevY)
	if prevOK && prevY == 0 {
		roots = append(roots, lo)
	}
	for i := 1; i <= scanSteps; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		x := lo + float64(i)*step
		y, err := f(x)
		ok := err == nil && isFinite(y)
		if ok && y == 0 {
			roots = append(roots, x)
		} else if ok && prevOK && prevY != 0 && (prevY < 0) != (y < 0) {
			if r, good := bisect(f, prevX, x, prevY); good {
				roots = append(roots, r)
			}
		}
		prevX, prevY, prevOK = x, y, ok
	}

	sort.Float64s(roots)
	var out []float64
	for _, r := range roots {
		r = snap(f, r)
		if len(out) > 0 && math.Abs(out[len(out)-1]-r) < rootTolerance {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func bisect(f func(float64) (float64, error), a, b, fa float64) (float64, bool) {
	for i := 0; i < bisectRounds; i++ {
		m := (a + b) / 2
		fm, err := f(m)
		if err != nil || !isFinite(fm) {
			return 0, false
		}
		if fm == 0 || b-a < 1e-15 {
			a, b = m, m
			break
		}
		if (fm < 0) == (fa < 0) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	r := (a + b) / 2
	fr, err := f(r)
	if err != nil || math.Abs(fr) > rootTolerance {
		return 0, false
	}
	return r, true
}

// snap moves r to a nearby simple fraction when f is at least as small there.
func snap(f func(float64) (float64, error), r float64) float64 {
	fr, err := f(r)
	if err != nil {
		return r
	}
	for _, den := range []float64{1, 2, 3, 4, 5, 6, 8, 10, 100} {
		cand := math.Round(r*den) / den
		if math.Abs(cand-r) > snapTolerance {
			continue
		}
		fc, err := f(cand)
		if err == nil && math.Abs(fc) <= math.Abs(fr) {
			return cand
		}
	}
	return r
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatFloat(f float64) string {
	if f == 0 {
		f = 0 // normalizes -0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatFloats(fs []float64) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = formatFloat(f)
	}
	return out
}
