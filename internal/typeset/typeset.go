// Package typeset renders canonical formulas as LaTeX for display.
package typeset

import (
	"strings"

	"github.com/hpungsan/algenova/internal/oracle"
)

// Formatter converts canonical strings to display markup. The zero value is
// ready to use.
type Formatter struct{}

// New returns a Formatter.
func New() *Formatter {
	return &Formatter{}
}

// ToDisplayMarkup renders s as LaTeX. Alternatives joined by " or " and the
// sides of "=" are rendered separately. If any part fails to parse, s is
// returned unchanged.
func (f *Formatter) ToDisplayMarkup(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	alternatives := strings.Split(s, " or ")
	out := make([]string, len(alternatives))
	for i, alt := range alternatives {
		rendered, ok := renderEquality(alt)
		if !ok {
			return s
		}
		out[i] = rendered
	}
	return strings.Join(out, ` \text{ or } `)
}

func renderEquality(s string) (string, bool) {
	sides := strings.Split(s, "=")
	out := make([]string, len(sides))
	for i, side := range sides {
		side = strings.TrimSpace(side)
		if side == "" {
			// "= 14" keeps its empty left side.
			continue
		}
		e, err := oracle.Parse(side)
		if err != nil {
			return "", false
		}
		out[i] = oracle.LaTeX(e)
	}
	return strings.TrimSpace(strings.Join(out, " = ")), true
}
