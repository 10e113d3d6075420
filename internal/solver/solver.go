// Package solver turns a raw math input into a step-by-step solution record.
//
// The pipeline is Normalize, Lint (advisory), special-formula lookup,
// Classify, then one handler per formula type. Each handler has its own
// oracle-failure policy:
//
//   - equation: recovers with the "Error in processing" sentinel and an Error step
//   - expression, derivative: the error is returned to the caller
//   - integral: recovers with the "Integration failed" sentinel, no step
//
// Cancellation of ctx always surfaces as an error and no result.
package solver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/algenova/internal/formula"
	"github.com/hpungsan/algenova/internal/metrics"
	"github.com/hpungsan/algenova/internal/oracle"
)

const (
	explainEquation   = "This is an algebraic or transcendental equation. I will solve for the unknown variable by isolating it on one side."
	explainExpression = "This is a mathematical expression. I will evaluate it step by step."
	explainDerivative = "This is a derivative problem. I will find the derivative using differentiation rules."
	explainIntegral   = "This is an integration problem. I will find the antiderivative."
)

// Formatter renders canonical strings as display markup and returns its input
// unchanged when it cannot.
type Formatter interface {
	ToDisplayMarkup(s string) string
}

// Options configures a Solver.
type Options struct {
	// Samples are the values the free parameter k is checked at. Empty means DefaultSamples.
	Samples []int
	// Formatter fills the markup fields. Nil leaves them empty.
	Formatter Formatter
	Logger    *zap.Logger
}

// Solver runs the solve pipeline against an oracle. It holds no per-request
// state and is safe for concurrent use.
type Solver struct {
	oracle  oracle.Oracle
	format  Formatter
	logger  *zap.Logger
	samples []int
}

// New returns a Solver backed by o.
func New(o oracle.Oracle, opts Options) *Solver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	samples := opts.Samples
	if len(samples) == 0 {
		samples = DefaultSamples
	}
	return &Solver{
		oracle:  o,
		format:  opts.Formatter,
		logger:  logger,
		samples: samples,
	}
}

// Solve runs the full pipeline on raw. The returned error is either a context
// error or an oracle failure on the expression or derivative path.
func (s *Solver) Solve(ctx context.Context, raw string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canonical := formula.Normalize(raw)
	res := &Result{
		OriginalFormula:  raw,
		CanonicalFormula: canonical,
		Lint:             formula.Lint(canonical),
	}
	if !res.Lint.Valid {
		s.logger.Debug("lint diagnostics",
			zap.String("canonical", canonical),
			zap.Strings("errors", res.Lint.Errors))
	}

	if sp, ok := formula.RecognizeSpecial(raw); ok {
		res.Type = formula.TypeSpecial
		res.Steps = []Step{}
		res.Answer = Single(sp.Markup)
		res.AnswerMarkup = sp.Markup
		res.Explanation = "This is a well-known formula: " + sp.Name + "."
		s.logger.Debug("special formula", zap.String("name", sp.Name))
		return res, nil
	}

	res.Type = formula.Classify(canonical)
	s.logger.Debug("classified formula",
		zap.String("canonical", canonical),
		zap.String("type", string(res.Type)))

	var err error
	switch res.Type {
	case formula.TypeEquation:
		err = s.solveEquation(ctx, res)
	case formula.TypeExpression:
		err = s.solveExpression(ctx, res)
	case formula.TypeDerivative:
		err = s.solveDerivative(ctx, res)
	case formula.TypeIntegral:
		err = s.solveIntegral(ctx, res)
	default:
		err = fmt.Errorf("unsupported formula type %q", res.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.applyMarkup(res)
	return res, nil
}

func (s *Solver) applyMarkup(res *Result) {
	if s.format == nil {
		return
	}
	for i := range res.Steps {
		if m := s.format.ToDisplayMarkup(res.Steps[i].Expression); m != res.Steps[i].Expression {
			res.Steps[i].ExpressionMarkup = m
		}
	}
	if res.Answer.IsSentinel() || len(res.Answer.Values) == 0 {
		return
	}
	if text := res.Answer.String(); text != "" {
		if m := s.format.ToDisplayMarkup(text); m != text {
			res.AnswerMarkup = m
		}
	}
}

// oracleFailed records a recovered or propagated oracle error.
func (s *Solver) oracleFailed(op string, err error) {
	metrics.OracleFailures.WithLabelValues(op).Inc()
	s.logger.Debug("oracle failure", zap.String("operation", op), zap.Error(err))
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// wrapsWhole reports whether s is a single parenthesised group.
func wrapsWhole(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// unwrap strips redundant outer parentheses.
func unwrap(s string) string {
	s = strings.TrimSpace(s)
	for wrapsWhole(s) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func sameText(a, b string) bool {
	return strings.Join(strings.Fields(a), "") == strings.Join(strings.Fields(b), "")
}
