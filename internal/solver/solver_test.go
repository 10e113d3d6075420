package solver

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/hpungsan/algenova/internal/formula"
	"github.com/hpungsan/algenova/internal/oracle"
	"github.com/hpungsan/algenova/internal/typeset"
)

func newTestSolver() *Solver {
	return New(oracle.NewEngine(), Options{})
}

func mustSolve(t *testing.T, s *Solver, raw string) *Result {
	t.Helper()
	res, err := s.Solve(context.Background(), raw)
	if err != nil {
		t.Fatalf("Solve(%q) error = %v", raw, err)
	}
	return res
}

func assertIndexed(t *testing.T, steps []Step) {
	t.Helper()
	for i, st := range steps {
		if st.Index != i+1 {
			t.Errorf("steps[%d].Index = %d, want %d", i, st.Index, i+1)
		}
	}
}

func TestSolve_PlusMinusBranches(t *testing.T) {
	s := newTestSolver()
	res := mustSolve(t, s, "x ± 1 = 5")
	plus := mustSolve(t, s, "x + 1 = 5")
	minus := mustSolve(t, s, "x - 1 = 5")

	if res.Type != formula.TypeEquation {
		t.Fatalf("Type = %q, want equation", res.Type)
	}
	got := append([]string(nil), res.Answer.Values...)
	sort.Strings(got)
	if strings.Join(got, "|") != "x = 4|x = 6" {
		t.Errorf("Answer = %v, want x = 4 and x = 6", res.Answer.Values)
	}

	want := len(plus.Steps) + len(minus.Steps) + 1
	if len(res.Steps) != want {
		t.Errorf("len(Steps) = %d, want %d", len(res.Steps), want)
	}
	assertIndexed(t, res.Steps)
	if last := res.Steps[len(res.Steps)-1]; last.Description != "Combine branches" {
		t.Errorf("last step = %q, want summary", last.Description)
	}
	if !strings.HasPrefix(res.Steps[0].Description, "Branch +: ") {
		t.Errorf("Steps[0].Description = %q, want + branch label", res.Steps[0].Description)
	}
	if len(res.Verification) != 2 || !res.Verified() {
		t.Errorf("Verification = %+v, want two correct records", res.Verification)
	}
}

// Every candidate without a free parameter must verify in at least one record.
func TestSolve_RoundTrip(t *testing.T) {
	s := newTestSolver()
	inputs := []string{
		"2x + 5 = 13",
		"x^2 - 4 = 0",
		"sqrt(x+4) = 6",
		"x^3 - 6x^2 + 11x - 6 = 0",
		"3y - 2 = 7",
		"sin(x) = 0.5",
		"cos(x) = 0",
		"tan(x) = 1",
		"log(x) = 2",
		"ln(x) = 1",
		"x^2 - 2 = 0",
		"2^x = 10",
		"3^x = 7",
		"2^x = 1000",
		"sqrt(x) = 11",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			res := mustSolve(t, s, in)
			if res.Answer.IsSentinel() {
				t.Fatalf("Answer = sentinel, steps %+v", res.Steps)
			}
			if len(res.Answer.Values) == 0 {
				t.Fatal("no candidates")
			}
			correct := make(map[string]bool)
			for _, v := range res.Verification {
				if v.Error != "" {
					t.Errorf("verification error for %s: %s", v.Solution, v.Error)
				}
				if v.IsCorrect {
					correct[v.Solution] = true
				}
			}
			for _, a := range res.Answer.Values {
				if !correct[a] {
					t.Errorf("candidate %q not verified; records %+v", a, res.Verification)
				}
			}
		})
	}
}

func TestSolve_EquationVariable(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "3y - 2 = 7")
	if res.Variable != "y" {
		t.Errorf("Variable = %q, want y", res.Variable)
	}
	if res.Answer.String() != "y = 3" {
		t.Errorf("Answer = %q, want y = 3", res.Answer.String())
	}
}

func TestSolve_SineFamily(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "sin(x) = 0.5")
	want := []string{"x = asin(0.5) + 2*k*pi", "x = pi - asin(0.5) + 2*k*pi"}
	if strings.Join(res.Answer.Values, "|") != strings.Join(want, "|") {
		t.Errorf("Answer = %v, want %v", res.Answer.Values, want)
	}
	// Two candidates, each sampled at k = 0 and k = 1.
	if len(res.Verification) != 4 {
		t.Fatalf("len(Verification) = %d, want 4", len(res.Verification))
	}
	for _, v := range res.Verification {
		if v.ParameterSample == nil {
			t.Errorf("record %q has no parameter sample", v.Solution)
		}
	}
}

func TestSolve_SineOutOfRange(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "sin(x) = 2")
	if !res.Answer.Multiple || len(res.Answer.Values) != 0 {
		t.Errorf("Answer = %+v, want empty list", res.Answer)
	}
	if res.Verification == nil || len(res.Verification) != 0 {
		t.Errorf("Verification = %+v, want empty", res.Verification)
	}
}

func TestSolve_LogFamilyReadings(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "log(x) = 2")
	want := []string{"x = 10^2", "x = exp(2)"}
	if strings.Join(res.Answer.Values, "|") != strings.Join(want, "|") {
		t.Fatalf("Answer = %v, want %v", res.Answer.Values, want)
	}
	if !strings.HasPrefix(res.Verification[1].LeftSide, "ln(x) → ") {
		t.Errorf("natural candidate verified against %q, want ln(x)", res.Verification[1].LeftSide)
	}
}

func TestSolve_EquationFailureRecovers(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "x = x")
	if res.Answer.String() != AnswerEquationFailed || res.Answer.Multiple {
		t.Errorf("Answer = %+v, want sentinel", res.Answer)
	}
	last := res.Steps[len(res.Steps)-1]
	if last.Description != "Error" || !strings.HasPrefix(last.Explanation, "Unable to process equation: ") {
		t.Errorf("last step = %+v, want Error step", last)
	}
	if res.Verification != nil {
		t.Errorf("Verification = %+v, want nil", res.Verification)
	}
}

func TestSolve_NoRootFoundIsNotNoSolution(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "exp(x) = -1")
	if res.Answer.String() != AnswerEquationFailed {
		t.Errorf("Answer = %+v, want sentinel", res.Answer)
	}
	last := res.Steps[len(res.Steps)-1]
	if last.Description != "No root found" {
		t.Errorf("last step = %+v, want No root found", last)
	}
	for _, st := range res.Steps {
		if strings.Contains(st.Expression, "No real solution") {
			t.Errorf("step %+v claims no real solution", st)
		}
	}
}

func TestSolve_RootOutsideFirstWindow(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "sqrt(x) = 11")
	if res.Answer.String() != "x = 121" {
		t.Errorf("Answer = %q, want x = 121", res.Answer.String())
	}
}

func TestSolve_UnbalancedInputStillSolves(t *testing.T) {
	res, err := newTestSolver().Solve(context.Background(), "(x+1 = 3")
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if res.Lint.Valid {
		t.Error("Lint.Valid = true, want diagnostics")
	}
	if res.Answer.String() != AnswerEquationFailed {
		t.Errorf("Answer = %q, want sentinel", res.Answer.String())
	}
}

func TestSolve_Expression(t *testing.T) {
	s := newTestSolver()
	tests := []struct {
		raw       string
		canonical string
		answer    string
	}{
		{"two plus three", "2+3", "5"},
		{`\frac{1}{2}+\frac{1}{3}`, "(1)/(2)+(1)/(3)", "0.8333333333333334"},
		{"2^10", "2^10", "1024"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res := mustSolve(t, s, tt.raw)
			if res.Type != formula.TypeExpression {
				t.Fatalf("Type = %q, want expression", res.Type)
			}
			if res.CanonicalFormula != tt.canonical {
				t.Errorf("CanonicalFormula = %q, want %q", res.CanonicalFormula, tt.canonical)
			}
			if res.Answer.String() != tt.answer {
				t.Errorf("Answer = %q, want %q", res.Answer.String(), tt.answer)
			}
			last := res.Steps[len(res.Steps)-1]
			if last.Expression != "= "+tt.answer {
				t.Errorf("last step = %q", last.Expression)
			}
			assertIndexed(t, res.Steps)
			if res.Verification != nil {
				t.Error("expressions carry no verification")
			}
		})
	}
}

func TestSolve_ExpressionFailurePropagates(t *testing.T) {
	res, err := newTestSolver().Solve(context.Background(), "2 + y")
	if err == nil {
		t.Fatalf("Solve() = %+v, want error", res)
	}
	if !errors.Is(err, oracle.ErrOracle) {
		t.Errorf("error %v does not match ErrOracle", err)
	}
	if res != nil {
		t.Error("partial result returned with error")
	}
}

func TestSolve_Derivative(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "d/dx(x^2 + 3x)")
	if res.Type != formula.TypeDerivative {
		t.Fatalf("Type = %q, want derivative", res.Type)
	}
	if res.Answer.String() != "2*x + 3" {
		t.Errorf("Answer = %q, want 2*x + 3", res.Answer.String())
	}
	if len(res.Steps) != 2 || res.Steps[0].Expression != "f(x) = x^2+3*x" {
		t.Errorf("Steps = %+v", res.Steps)
	}
}

func TestSolve_DerivativeOtherVariable(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "derivative of t^3 with respect to t")
	if res.Variable != "t" || res.Answer.String() != "3*t^2" {
		t.Errorf("Variable = %q, Answer = %q", res.Variable, res.Answer.String())
	}
}

func TestSolve_DerivativeFailurePropagates(t *testing.T) {
	_, err := newTestSolver().Solve(context.Background(), "d/dx(")
	if err == nil {
		t.Fatal("Solve() error = nil, want oracle failure")
	}
}

func TestSolve_Integral(t *testing.T) {
	s := newTestSolver()
	res := mustSolve(t, s, "∫x^2")
	if res.Type != formula.TypeIntegral {
		t.Fatalf("Type = %q, want integral", res.Type)
	}
	if res.Answer.String() != "x^3/3 + C" {
		t.Errorf("Answer = %q, want x^3/3 + C", res.Answer.String())
	}
}

func TestSolve_IntegralByParts(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "∫ x*sin(x) dx")
	if res.Answer.String() != "-x*cos(x) + sin(x) + C" {
		t.Errorf("Answer = %q", res.Answer.String())
	}
	// Setup, three by-parts steps, result.
	if len(res.Steps) != 5 {
		t.Fatalf("len(Steps) = %d, want 5: %+v", len(res.Steps), res.Steps)
	}
	if res.Steps[1].Expression != "u = x, dv = sin(x) dx" {
		t.Errorf("Steps[1] = %q", res.Steps[1].Expression)
	}
	if res.Steps[2].Expression != "du = 1 dx, v = -cos(x)" {
		t.Errorf("Steps[2] = %q", res.Steps[2].Expression)
	}
}

func TestSolve_IntegralByPartsVariableNamedV(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "∫ v*cos(v) dv")
	if res.Variable != "v" {
		t.Fatalf("Variable = %q, want v", res.Variable)
	}
	if len(res.Steps) != 5 {
		t.Fatalf("len(Steps) = %d, want 5: %+v", len(res.Steps), res.Steps)
	}
	if res.Steps[1].Expression != "f = v, dg = cos(v) dv" {
		t.Errorf("Steps[1] = %q", res.Steps[1].Expression)
	}
	if res.Steps[2].Expression != "df = 1 dv, g = sin(v)" {
		t.Errorf("Steps[2] = %q", res.Steps[2].Expression)
	}
}

func TestSolve_DefiniteIntegral(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "integral of x from 0 to 2")
	if res.Answer.String() != "2" {
		t.Errorf("Answer = %q, want 2", res.Answer.String())
	}
	if strings.Contains(res.Answer.String(), "C") {
		t.Error("definite integral carries a constant")
	}
}

func TestSolve_IntegralFailureRecovers(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "∫ sin(x^2) dx")
	if res.Answer.String() != AnswerIntegralFailed {
		t.Errorf("Answer = %q, want sentinel", res.Answer.String())
	}
	if len(res.Steps) != 1 {
		t.Errorf("len(Steps) = %d, want only the setup step", len(res.Steps))
	}
}

func TestSolve_Special(t *testing.T) {
	res := mustSolve(t, newTestSolver(), "what is the quadratic formula")
	if res.Type != formula.TypeSpecial {
		t.Fatalf("Type = %q, want special", res.Type)
	}
	if len(res.Steps) != 0 || res.Verification != nil {
		t.Errorf("special result has steps %v or verification %v", res.Steps, res.Verification)
	}
	if !strings.Contains(res.Answer.String(), `\sqrt{b^{2} - 4ac}`) {
		t.Errorf("Answer = %q", res.Answer.String())
	}
}

func TestSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newTestSolver().Solve(ctx, "x^2 - 4 = 0")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Solve() error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Error("result returned for cancelled context")
	}
}

func TestSolve_Markup(t *testing.T) {
	s := New(oracle.NewEngine(), Options{Formatter: typeset.New()})
	res := mustSolve(t, s, "x^2 - 4 = 0")
	if res.AnswerMarkup != `x = -2 \text{ or } x = 2` {
		t.Errorf("AnswerMarkup = %q", res.AnswerMarkup)
	}
	if res.Steps[0].ExpressionMarkup != "x^{2} - 4 = 0" {
		t.Errorf("Steps[0].ExpressionMarkup = %q", res.Steps[0].ExpressionMarkup)
	}

	plain := mustSolve(t, newTestSolver(), "x^2 - 4 = 0")
	if plain.AnswerMarkup != "" || plain.Steps[0].ExpressionMarkup != "" {
		t.Error("markup filled without a formatter")
	}
}
