package solver

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/algenova/internal/formula"
	"github.com/hpungsan/algenova/internal/oracle"
)

// branch is the independent outcome of solving one equation. Branches never
// share a step buffer; merging copies their steps.
type branch struct {
	steps        []Step
	answers      []string
	verification []Verification
	failed       bool
}

func (s *Solver) solveEquation(ctx context.Context, res *Result) error {
	res.Explanation = explainEquation
	res.Variable = formula.MainVariable(res.CanonicalFormula)

	b, err := s.equation(ctx, res.CanonicalFormula, res.Variable)
	if err != nil {
		return err
	}
	res.Steps = b.steps
	if b.failed {
		res.Answer = Single(AnswerEquationFailed)
		return nil
	}
	res.Answer = List(b.answers)
	res.Verification = b.verification
	return nil
}

// equation solves canonical, splitting on ± into a "+" and a "-" branch.
func (s *Solver) equation(ctx context.Context, canonical, v string) (branch, error) {
	if !strings.Contains(canonical, "±") {
		return s.equationSides(ctx, canonical, v)
	}
	plus, err := s.equation(ctx, strings.ReplaceAll(canonical, "±", "+"), v)
	if err != nil {
		return branch{}, err
	}
	minus, err := s.equation(ctx, strings.ReplaceAll(canonical, "±", "-"), v)
	if err != nil {
		return branch{}, err
	}
	return mergeBranches(plus, minus), nil
}

// mergeBranches concatenates steps (relabelled and renumbered), answers and
// verification records, then appends one summary step. The result fails only
// if both branches failed.
func mergeBranches(plus, minus branch) branch {
	var buf stepBuffer
	var out branch
	for _, part := range []struct {
		label string
		b     branch
	}{{"+", plus}, {"-", minus}} {
		for _, st := range part.b.steps {
			buf.add("Branch "+part.label+": "+st.Description, st.Expression, st.Explanation)
		}
		out.answers = append(out.answers, part.b.answers...)
		if part.b.verification != nil {
			out.verification = append(out.verification, part.b.verification...)
		}
	}
	out.failed = plus.failed && minus.failed
	if out.answers == nil {
		out.answers = []string{}
	}

	summary := strings.Join(out.answers, " or ")
	switch {
	case out.failed:
		summary = AnswerEquationFailed
	case summary == "":
		summary = "No real solution"
	}
	buf.add("Combine branches", summary, "Collecting the solutions of the + and - branches.")
	out.steps = buf.list()
	return out
}

// equationSides solves a ±-free equation split at its first "=".
func (s *Solver) equationSides(ctx context.Context, canonical, v string) (branch, error) {
	var buf stepBuffer
	left, right := canonical, "0"
	if i := strings.Index(canonical, "="); i >= 0 {
		left, right = canonical[:i], canonical[i+1:]
	}
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	buf.add("Original equation", left+" = "+right, "Starting with the given equation.")

	fam, ok, err := s.family(ctx, left, right, v)
	if err != nil {
		return branch{}, err
	}
	if ok {
		buf.add(fam.description, solvedText(fam.answers), fam.explanation)
		b := branch{answers: fam.answers, verification: []Verification{}}
		for i, a := range fam.answers {
			b.verification = append(b.verification,
				Verify(ctx, s.oracle, fam.readings[i], right, v, []string{a}, s.samples)...)
		}
		b.steps = buf.list()
		return b, nil
	}

	roots, err := s.solveDifference(ctx, left, right, v)
	if err != nil {
		if isContextErr(err) {
			return branch{}, err
		}
		s.logger.Debug("equation recovered with sentinel",
			zap.String("canonical", canonical), zap.Error(err))
		if errors.Is(err, oracle.ErrNoRootFound) {
			buf.add("No root found", canonical,
				"A numeric search found no root in the searched range. This does not rule out a solution outside it.")
		} else {
			buf.add("Error", canonical, "Unable to process equation: "+err.Error())
		}
		return branch{steps: buf.list(), failed: true}, nil
	}

	answers := make([]string, len(roots))
	for i, r := range roots {
		answers[i] = v + " = " + r
	}
	buf.add("Solved equation", solvedText(answers), "Isolated the variable using algebraic rules.")
	return branch{
		steps:        buf.list(),
		answers:      answers,
		verification: Verify(ctx, s.oracle, left, right, v, answers, s.samples),
	}, nil
}

func solvedText(answers []string) string {
	if len(answers) == 0 {
		return "No real solution"
	}
	return strings.Join(answers, " or ")
}

// solveDifference asks the oracle for the roots of (left)-(right). The factored
// form is tried first; the raw difference is the fallback when factoring or
// solving the factored form fails or finds nothing.
func (s *Solver) solveDifference(ctx context.Context, left, right, v string) ([]string, error) {
	diff := "(" + left + ")-(" + right + ")"

	factored, err := s.oracle.Factor(ctx, diff)
	if err == nil {
		var roots []string
		roots, err = s.oracle.Solve(ctx, factored, v)
		if err == nil && len(roots) > 0 {
			return roots, nil
		}
		if err != nil {
			s.oracleFailed("solve", err)
		}
	} else {
		s.oracleFailed("factor", err)
	}
	if err != nil && isContextErr(err) {
		return nil, err
	}

	roots, err := s.oracle.Solve(ctx, diff, v)
	if err != nil {
		s.oracleFailed("solve", err)
		return nil, err
	}
	return roots, nil
}

// family is a closed-form solution set read off an inverse function.
type family struct {
	description string
	explanation string
	answers     []string
	// readings[i] is the left side answers[i] is verified against.
	readings []string
}

var familyCall = regexp.MustCompile(`^(sin|cos|tan|log|ln)(\(.*\))$`)

// family recognizes sin(v)=c, cos(v)=c, tan(v)=c, log(v)=c and ln(v)=c where
// c is a constant. ok is false for anything else.
func (s *Solver) family(ctx context.Context, left, right, v string) (family, bool, error) {
	m := familyCall.FindStringSubmatch(left)
	if m == nil || !wrapsWhole(m[2]) || unwrap(m[2]) != v {
		return family{}, false, nil
	}
	c, err := s.oracle.Evaluate(ctx, right)
	if err != nil {
		if isContextErr(err) {
			return family{}, false, err
		}
		// Not a constant right side: leave it to the general solver.
		return family{}, false, nil
	}

	r := "(" + right + ")"
	if !strings.ContainsAny(right, "+-*/^ ") {
		r = right
	}
	var f family
	switch m[1] {
	case "sin":
		f = family{
			description: "Apply inverse sine",
			explanation: "Sine repeats every 2*pi and takes each value twice per period; k is any integer.",
		}
		if math.Abs(c) <= 1 {
			f.answers = []string{"asin(" + r + ") + 2*k*pi", "pi - asin(" + r + ") + 2*k*pi"}
		}
	case "cos":
		f = family{
			description: "Apply inverse cosine",
			explanation: "Cosine repeats every 2*pi and is even, so both signs of the principal value solve it; k is any integer.",
		}
		if math.Abs(c) <= 1 {
			f.answers = []string{"acos(" + r + ") + 2*k*pi", "-acos(" + r + ") + 2*k*pi"}
		}
	case "tan":
		f = family{
			description: "Apply inverse tangent",
			explanation: "Tangent repeats every pi; k is any integer.",
			answers:     []string{"atan(" + r + ") + k*pi"},
		}
	case "log":
		f = family{
			description: "Exponentiate both sides",
			explanation: "log is read both as base 10 and as the natural logarithm, giving one candidate for each reading.",
			answers:     []string{"10^" + r, "exp(" + right + ")"},
			readings:    []string{left, "ln(" + v + ")"},
		}
	case "ln":
		f = family{
			description: "Exponentiate both sides",
			explanation: "The natural logarithm is inverted by the exponential function.",
			answers:     []string{"exp(" + right + ")"},
		}
	}
	for i, a := range f.answers {
		f.answers[i] = v + " = " + a
	}
	if f.readings == nil {
		f.readings = make([]string, len(f.answers))
		for i := range f.readings {
			f.readings[i] = left
		}
	}
	if f.answers == nil {
		f.answers = []string{}
		f.explanation = "The " + m[1] + " of a real number lies between -1 and 1, so there is no real solution."
	}
	return f, true, nil
}
