package solver

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpungsan/algenova/internal/metrics"
	"github.com/hpungsan/algenova/internal/oracle"
)

// Tolerance is the absolute difference at or below which both sides count as equal.
const Tolerance = 1e-10

// ParameterName is the free integer parameter of periodic solution families.
const ParameterName = "k"

// DefaultSamples are the values the free parameter is sampled at.
var DefaultSamples = []int{0, 1}

var identifier = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// substitute replaces every whole identifier equal to name with (value).
func substitute(expr, name, value string) string {
	return identifier.ReplaceAllStringFunc(expr, func(tok string) string {
		if tok == name {
			return "(" + value + ")"
		}
		return tok
	})
}

func hasIdentifier(expr, name string) bool {
	for _, tok := range identifier.FindAllString(expr, -1) {
		if tok == name {
			return true
		}
	}
	return false
}

// Verify substitutes each candidate back into left = right and compares both
// sides numerically. Candidates may carry a "<variable> =" prefix. A candidate
// containing the free parameter k is checked once per sample. A failure to
// evaluate one candidate is recorded on its own entry and does not affect the
// others.
func Verify(ctx context.Context, o oracle.Oracle, left, right, variable string, candidates []string, samples []int) []Verification {
	if len(samples) == 0 {
		samples = DefaultSamples
	}
	prefix := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(variable) + `\s*=\s*`)

	out := make([]Verification, 0, len(candidates))
	for _, c := range candidates {
		clean := strings.ReplaceAll(prefix.ReplaceAllString(c, ""), "π", "pi")
		if !hasIdentifier(clean, ParameterName) || variable == ParameterName {
			out = append(out, verifyOne(ctx, o, left, right, variable, clean, clean, nil))
			continue
		}
		for _, k := range samples {
			value := substitute(clean, ParameterName, strconv.Itoa(k))
			out = append(out, verifyOne(ctx, o, left, right, variable, clean, value, &k))
		}
	}
	return out
}

// verifyOne checks value, reporting it under label (the unsampled form).
func verifyOne(ctx context.Context, o oracle.Oracle, left, right, variable, label, value string, k *int) Verification {
	rec := Verification{Solution: variable + " = " + label, ParameterSample: k}

	l := substitute(left, variable, value)
	r := substitute(right, variable, value)
	lv, err := o.Evaluate(ctx, l)
	if err != nil {
		return verificationError(rec, err)
	}
	rv, err := o.Evaluate(ctx, r)
	if err != nil {
		return verificationError(rec, err)
	}

	// One expression, so the difference is exact whenever both sides are rational.
	diff, err := o.Evaluate(ctx, "("+l+")-("+r+")")
	if err != nil {
		diff = lv - rv
	}

	rec.LeftSide = fmt.Sprintf("%s → %s", left, formatNumber(lv))
	rec.RightSide = fmt.Sprintf("%s → %s", right, formatNumber(rv))
	rec.LeftValue = &lv
	rec.RightValue = &rv
	rec.IsCorrect = math.Abs(diff) <= Tolerance
	if rec.IsCorrect {
		metrics.Verifications.WithLabelValues("correct").Inc()
	} else {
		metrics.Verifications.WithLabelValues("incorrect").Inc()
	}
	return rec
}

func verificationError(rec Verification, err error) Verification {
	metrics.Verifications.WithLabelValues("error").Inc()
	rec.Error = "Verification error: " + err.Error()
	return rec
}

// formatNumber prints v without an exponent in the everyday range.
func formatNumber(v float64) string {
	if a := math.Abs(v); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
