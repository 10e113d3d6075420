package formula

import (
	"regexp"
	"strings"
)

var (
	derivativeMarker = regexp.MustCompile(`d/d[a-zA-Z]`)
	primeMarker      = regexp.MustCompile(`[a-zA-Z)]'`)
	integralWord     = regexp.MustCompile(`(?i)\bintegral\b`)
)

// Classify assigns a Type from surface markers only. An equals sign wins over
// a derivative marker, so differential equations classify as equations; only
// an integral sign keeps a formula with "=" out of the equation path.
func Classify(canonical string) Type {
	hasIntegral := strings.ContainsRune(canonical, '∫') || integralWord.MatchString(canonical)
	switch {
	case strings.Contains(canonical, "=") && !hasIntegral:
		return TypeEquation
	case derivativeMarker.MatchString(canonical) || primeMarker.MatchString(canonical):
		return TypeDerivative
	case hasIntegral:
		return TypeIntegral
	}
	return TypeExpression
}

// DerivativeVariable returns the variable named by a d/d<v> marker, or "" if
// the formula has none.
func DerivativeVariable(canonical string) string {
	m := derivativeMarker.FindString(canonical)
	if m == "" {
		return ""
	}
	return m[len(m)-1:]
}
