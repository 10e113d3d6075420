package solver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/algenova/internal/formula"
	"github.com/hpungsan/algenova/internal/oracle"
)

func (s *Solver) solveExpression(ctx context.Context, res *Result) error {
	res.Explanation = explainExpression
	c := res.CanonicalFormula

	var buf stepBuffer
	buf.add("Original expression", c, "Starting with the given mathematical expression.")

	simplified, err := s.oracle.Simplify(ctx, c)
	if err != nil {
		s.oracleFailed("simplify", err)
		return fmt.Errorf("simplify expression: %w", err)
	}
	if !sameText(simplified, c) {
		buf.add("Simplified form", simplified, "Simplifying the expression using algebraic rules.")
	}

	value, err := s.oracle.Evaluate(ctx, c)
	if err != nil {
		s.oracleFailed("evaluate", err)
		return fmt.Errorf("evaluate expression: %w", err)
	}
	text := formatNumber(value)
	buf.add("Final calculation", "= "+text, "Performing the final calculation to get the numerical result.")

	res.Steps = buf.list()
	res.Answer = Single(text)
	return nil
}

var derivativePrefix = regexp.MustCompile(`d/d[a-zA-Z]\s*\*?`)

func (s *Solver) solveDerivative(ctx context.Context, res *Result) error {
	res.Explanation = explainDerivative
	c := res.CanonicalFormula

	fn := c
	if loc := derivativePrefix.FindStringIndex(fn); loc != nil {
		fn = fn[:loc[0]] + fn[loc[1]:]
	}
	fn = unwrap(strings.ReplaceAll(fn, "'", ""))

	v := formula.DerivativeVariable(c)
	if v == "" {
		v = formula.MainVariable(fn)
	}
	res.Variable = v

	var buf stepBuffer
	buf.add("Original function", fmt.Sprintf("f(%s) = %s", v, fn), "Identifying the function to differentiate.")

	deriv, err := s.oracle.Differentiate(ctx, fn, v)
	if err != nil {
		s.oracleFailed("differentiate", err)
		return fmt.Errorf("differentiate: %w", err)
	}
	buf.add("Apply differentiation rules", fmt.Sprintf("f'(%s) = %s", v, deriv), "Using calculus differentiation rules.")

	res.Steps = buf.list()
	res.Answer = Single(deriv)
	return nil
}

var (
	definiteIntegral   = regexp.MustCompile(`^∫\s*_\s*(\([^()]*\)|[^\s^()]+)\s*\^\s*(\([^()]*\)|[^\s()*]+)`)
	integralWord       = regexp.MustCompile(`(?i)\bintegral\b`)
	differentialSuffix = regexp.MustCompile(`\s*\*?\s*\bd([a-zA-Z])\s*$`)
)

// integrand splits an integral formula into its integrand, its variable (""
// when no differential is written) and its bounds (nil when indefinite).
func integrand(c string) (fn, v string, bounds *oracle.Bounds) {
	fn = strings.TrimSpace(c)
	if m := definiteIntegral.FindStringSubmatch(fn); m != nil {
		bounds = &oracle.Bounds{Lower: unwrap(m[1]), Upper: unwrap(m[2])}
		fn = fn[len(m[0]):]
	} else {
		fn = strings.Replace(fn, "∫", "", 1)
		if loc := integralWord.FindStringIndex(fn); loc != nil {
			fn = fn[:loc[0]] + fn[loc[1]:]
		}
	}
	if m := differentialSuffix.FindStringSubmatch(fn); m != nil {
		v = m[1]
		fn = fn[:len(fn)-len(m[0])]
	}
	fn = strings.TrimSpace(fn)
	fn = unwrap(strings.TrimSpace(strings.TrimPrefix(fn, "*")))
	return fn, v, bounds
}

func (s *Solver) solveIntegral(ctx context.Context, res *Result) error {
	res.Explanation = explainIntegral

	fn, v, bounds := integrand(res.CanonicalFormula)
	if v == "" {
		v = formula.MainVariable(fn)
	}
	res.Variable = v

	var buf stepBuffer
	setup := fmt.Sprintf("∫ %s d%s", fn, v)
	if bounds != nil {
		setup = fmt.Sprintf("∫_(%s)^(%s) %s d%s", bounds.Lower, bounds.Upper, fn, v)
	}
	buf.add("Set up the integral", setup, "Identifying the integrand and the variable of integration.")

	if err := s.byPartsSteps(ctx, &buf, fn, v); err != nil {
		return err
	}

	result, err := s.oracle.Integrate(ctx, fn, v, bounds)
	if err != nil {
		if isContextErr(err) {
			return err
		}
		s.oracleFailed("integrate", err)
		s.logger.Debug("integral recovered with sentinel", zap.String("integrand", fn))
		res.Steps = buf.list()
		res.Answer = Single(AnswerIntegralFailed)
		return nil
	}

	if bounds != nil {
		buf.add("Evaluate the definite integral", setup+" = "+result, "Applying the bounds to the antiderivative.")
		res.Answer = Single(result)
	} else {
		buf.add("Integration", fmt.Sprintf("%s = %s + C", setup, result), "Finding the antiderivative symbolically.")
		res.Answer = Single(result + " + C")
	}
	res.Steps = buf.list()
	return nil
}

// byPartsSteps adds the integration-by-parts walkthrough for a polynomial
// times sin(x) or cos(x). The steps are explanatory; the oracle computes the
// result independently.
func (s *Solver) byPartsSteps(ctx context.Context, buf *stepBuffer, fn, x string) error {
	m := regexp.MustCompile(`^(.+)\*(sin|cos)\(` + regexp.QuoteMeta(x) + `\)$`).FindStringSubmatch(fn)
	if m == nil || !isPolynomialIn(m[1], x) {
		return nil
	}
	poly, trig := unwrap(m[1]), m[2]

	dPoly, err := s.oracle.Differentiate(ctx, poly, x)
	if err != nil {
		if isContextErr(err) {
			return err
		}
		s.oracleFailed("differentiate", err)
		dPoly = fmt.Sprintf("d/d%s(%s)", x, poly)
	}
	anti := "-cos(" + x + ")"
	if trig == "cos" {
		anti = "sin(" + x + ")"
	}

	// u and v name the by-parts factors unless the integration variable
	// already uses one of those letters.
	u, v := "u", "v"
	if x == "u" || x == "v" {
		u, v = "f", "g"
	}
	buf.add("Choose "+u+" and d"+v,
		fmt.Sprintf("%s = %s, d%s = %s(%s) d%s", u, poly, v, trig, x, x),
		"Integration by parts: take the polynomial as "+u+", since differentiating it lowers its degree.")
	buf.add("Differentiate "+u+" and integrate d"+v,
		fmt.Sprintf("d%s = %s d%s, %s = %s", u, dPoly, x, v, anti),
		"d"+u+" is the derivative of "+u+" and "+v+" is an antiderivative of d"+v+".")
	buf.add("Apply integration by parts",
		fmt.Sprintf("∫ %s d%s = %s*%s - ∫ %s d%s", u, v, u, v, v, u),
		"Substituting into the by-parts identity; repeat while the remaining integral keeps a polynomial factor.")
	return nil
}

var polynomialChars = regexp.MustCompile(`^[0-9.+\-*^()\sA-Za-z]+$`)

func isPolynomialIn(s, v string) bool {
	if !polynomialChars.MatchString(s) || !hasIdentifier(s, v) {
		return false
	}
	for _, tok := range identifier.FindAllString(s, -1) {
		if tok != v {
			return false
		}
	}
	return true
}
