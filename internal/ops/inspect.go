package ops

import (
	"strings"

	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/formula"
)

// NormalizeOutput is a canonical formula and its lint report.
type NormalizeOutput struct {
	Original  string             `json:"original"`
	Canonical string             `json:"canonical"`
	Lint      formula.LintResult `json:"lint"`
}

// ClassifyOutput reports how Solve would route a formula.
type ClassifyOutput struct {
	Canonical string           `json:"canonical"`
	Type      formula.Type     `json:"type"`
	Variable  string           `json:"variable,omitempty"`
	Special   *formula.Special `json:"special,omitempty"`
}

// Normalize rewrites raw input into canonical syntax without solving it.
func Normalize(raw string) (*NormalizeOutput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.NewMissingFormula()
	}
	canonical := formula.Normalize(raw)
	return &NormalizeOutput{
		Original:  raw,
		Canonical: canonical,
		Lint:      formula.Lint(canonical),
	}, nil
}

// Classify reports the formula type and main variable of raw input.
// Special formulas are recognized on the raw text, as Solve does.
func Classify(raw string) (*ClassifyOutput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.NewMissingFormula()
	}
	canonical := formula.Normalize(raw)
	out := &ClassifyOutput{Canonical: canonical}
	if sp, ok := formula.RecognizeSpecial(raw); ok {
		out.Type = formula.TypeSpecial
		out.Special = &sp
		return out, nil
	}

	out.Type = formula.Classify(canonical)
	out.Variable = formula.MainVariable(canonical)
	if out.Type == formula.TypeDerivative {
		if v := formula.DerivativeVariable(canonical); v != "" {
			out.Variable = v
		}
	}
	return out, nil
}
