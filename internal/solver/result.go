package solver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/algenova/internal/formula"
)

// Sentinel answers standing in for a result the oracle could not produce.
const (
	AnswerEquationFailed = "Error in processing"
	AnswerIntegralFailed = "Integration failed"
)

// Step is one entry of a solution's ordered step sequence.
type Step struct {
	Index            int    `json:"step"`
	Description      string `json:"description"`
	Expression       string `json:"expression"`
	ExpressionMarkup string `json:"expression_markup,omitempty"`
	Explanation      string `json:"explanation"`
}

// Answer is either a single value or an ordered list of values (one per root
// or branch). It marshals to a JSON string or a JSON array accordingly.
type Answer struct {
	Values   []string
	Multiple bool
}

// Single returns a one-value answer.
func Single(s string) Answer {
	return Answer{Values: []string{s}}
}

// List returns a multi-value answer. An empty list is a valid answer: the
// equation has no real solution.
func List(values []string) Answer {
	if values == nil {
		values = []string{}
	}
	return Answer{Values: values, Multiple: true}
}

// String joins the values with " or ".
func (a Answer) String() string {
	return strings.Join(a.Values, " or ")
}

// IsSentinel reports whether the answer is one of the failure sentinels.
func (a Answer) IsSentinel() bool {
	if a.Multiple || len(a.Values) != 1 {
		return false
	}
	return a.Values[0] == AnswerEquationFailed || a.Values[0] == AnswerIntegralFailed
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multiple {
		values := a.Values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	}
	if len(a.Values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(a.Values[0])
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*a = Answer{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*a = List(values)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("answer must be a string or an array of strings: %w", err)
	}
	*a = Single(s)
	return nil
}

// Verification is the outcome of substituting one candidate (at one sample
// of its free parameter) back into both sides of the equation.
type Verification struct {
	Solution        string   `json:"solution"`
	ParameterSample *int     `json:"parameter_sample,omitempty"`
	LeftSide        string   `json:"left_side,omitempty"`
	RightSide       string   `json:"right_side,omitempty"`
	LeftValue       *float64 `json:"left_value,omitempty"`
	RightValue      *float64 `json:"right_value,omitempty"`
	IsCorrect       bool     `json:"is_correct"`
	Error           string   `json:"error,omitempty"`
}

// Result is the complete solution record for one input.
type Result struct {
	OriginalFormula  string             `json:"original_formula"`
	CanonicalFormula string             `json:"canonical_formula"`
	Type             formula.Type       `json:"type"`
	Variable         string             `json:"variable,omitempty"`
	Steps            []Step             `json:"steps"`
	Answer           Answer             `json:"answer"`
	AnswerMarkup     string             `json:"answer_markup,omitempty"`
	Verification     []Verification     `json:"verification"`
	Explanation      string             `json:"explanation"`
	Lint             formula.LintResult `json:"lint"`
}

// Verified reports whether every verification record is correct. It is false
// when there is nothing to verify.
func (r *Result) Verified() bool {
	if len(r.Verification) == 0 {
		return false
	}
	for _, v := range r.Verification {
		if !v.IsCorrect {
			return false
		}
	}
	return true
}

// stepBuffer is an append-only step sequence with 1-based indices.
type stepBuffer struct {
	steps []Step
}

func (b *stepBuffer) add(description, expression, explanation string) {
	b.steps = append(b.steps, Step{
		Index:       len(b.steps) + 1,
		Description: description,
		Expression:  expression,
		Explanation: explanation,
	})
}

func (b *stepBuffer) list() []Step {
	if b.steps == nil {
		return []Step{}
	}
	return b.steps
}
