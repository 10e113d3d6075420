package ops

import "github.com/hpungsan/algenova/internal/formula"

// Example is a sample input for one kind of problem.
type Example struct {
	Type  string `json:"type"`
	Input string `json:"input"`
}

// CatalogOutput describes what the solver accepts.
type CatalogOutput struct {
	SupportedOperations []string          `json:"supportedOperations"`
	Examples            []Example         `json:"examples"`
	SpecialFormulas     []formula.Special `json:"specialFormulas"`
}

var supportedOperations = []string{
	"Linear, quadratic, polynomial equations",
	"Equations with sqrt, log, sin, cos, tan",
	"Expression evaluation (simplify + calculate)",
	"Derivatives (d/dx)",
	"Integrals (basic antiderivative)",
}

var examples = []Example{
	{Type: "Linear Equation", Input: "2x + 5 = 13"},
	{Type: "Quadratic Equation", Input: "x^2 - 4 = 0"},
	{Type: "Square Root Equation", Input: "sqrt(x+4) = 6"},
	{Type: "Logarithmic Equation", Input: "log(x) = 2"},
	{Type: "Trigonometric Equation", Input: "sin(x) = 0.5"},
	{Type: "Derivative", Input: "d/dx(x^2 + 3x)"},
	{Type: "Integral", Input: "∫x^2"},
}

// Catalog returns the supported operations, sample inputs and the
// recognized special formulas.
func Catalog() *CatalogOutput {
	return &CatalogOutput{
		SupportedOperations: append([]string(nil), supportedOperations...),
		Examples:            append([]Example(nil), examples...),
		SpecialFormulas:     formula.Catalog(),
	}
}
