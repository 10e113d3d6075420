package formula

import "regexp"

// Special is a named identity from the fixed catalog.
type Special struct {
	Name   string `json:"name"`
	Markup string `json:"markup"`
}

type specialEntry struct {
	pattern *regexp.Regexp
	special Special
}

// specialCatalog is checked in order against the raw input; the first match wins.
// Patterns name the identity rather than a bare keyword so that ordinary input
// such as "x^2 - 4 = 0" is never mistaken for a catalog request.
var specialCatalog = []specialEntry{
	{regexp.MustCompile(`(?i)\bquadratic\s+formula\b`), Special{
		Name:   "Quadratic formula",
		Markup: `x = \frac{-b \pm \sqrt{b^{2} - 4ac}}{2a}`,
	}},
	{regexp.MustCompile(`(?i)\bbinomial\s+(?:theorem|expansion|formula)\b`), Special{
		Name:   "Binomial theorem",
		Markup: `(a + b)^{n} = \sum_{k=0}^{n} \binom{n}{k} a^{n-k} b^{k}`,
	}},
	{regexp.MustCompile(`(?i)\beuler'?s?\s+identity\b`), Special{
		Name:   "Euler's identity",
		Markup: `e^{i\pi} + 1 = 0`,
	}},
	{regexp.MustCompile(`(?i)\beuler'?s?\s+formula\b`), Special{
		Name:   "Euler's formula",
		Markup: `e^{ix} = \cos x + i \sin x`,
	}},
	{regexp.MustCompile(`(?i)\bpythagor(?:as|ean)(?:'s)?\s+theorem\b`), Special{
		Name:   "Pythagorean theorem",
		Markup: `a^{2} + b^{2} = c^{2}`,
	}},
	{regexp.MustCompile(`(?i)\b(?:pythagorean|trig(?:onometric)?)\s+identity\b`), Special{
		Name:   "Pythagorean trigonometric identity",
		Markup: `\sin^{2} x + \cos^{2} x = 1`,
	}},
	{regexp.MustCompile(`(?i)\bmaclaurin\s+series\b`), Special{
		Name:   "Maclaurin series",
		Markup: `f(x) = \sum_{n=0}^{\infty} \frac{f^{(n)}(0)}{n!} x^{n}`,
	}},
	{regexp.MustCompile(`(?i)\btaylor\s+series\b`), Special{
		Name:   "Taylor series",
		Markup: `f(x) = \sum_{n=0}^{\infty} \frac{f^{(n)}(a)}{n!} (x - a)^{n}`,
	}},
	{regexp.MustCompile(`(?i)\bdefinition\s+of\s+(?:the\s+)?derivative\b|\bderivative\s+definition\b`), Special{
		Name:   "Definition of the derivative",
		Markup: `f'(x) = \lim_{h \to 0} \frac{f(x + h) - f(x)}{h}`,
	}},
	{regexp.MustCompile(`(?i)\bintegration\s+by\s+parts\b`), Special{
		Name:   "Integration by parts",
		Markup: `\int u \, dv = uv - \int v \, du`,
	}},
	{regexp.MustCompile(`(?i)\b(?:log(?:arithm)?\s+)?product\s+rule\s+(?:for|of)\s+log(?:arithm)?s?\b|\blog(?:arithm)?\s+product\s+rule\b`), Special{
		Name:   "Logarithm product rule",
		Markup: `\log_{b}(xy) = \log_{b} x + \log_{b} y`,
	}},
	{regexp.MustCompile(`(?i)\bdifference\s+of\s+(?:two\s+)?squares\b`), Special{
		Name:   "Difference of squares",
		Markup: `a^{2} - b^{2} = (a - b)(a + b)`,
	}},
	{regexp.MustCompile(`(?i)\barithmetic\s+(?:series|progression|sum)\b`), Special{
		Name:   "Arithmetic series",
		Markup: `S_{n} = \frac{n}{2} \left(2a_{1} + (n - 1)d\right)`,
	}},
	{regexp.MustCompile(`(?i)\bgeometric\s+(?:series|progression|sum)\b`), Special{
		Name:   "Geometric series",
		Markup: `S_{n} = a_{1} \frac{1 - r^{n}}{1 - r}, \quad r \neq 1`,
	}},
	{regexp.MustCompile(`(?i)\bfundamental\s+theorem\s+of\s+calculus\b`), Special{
		Name:   "Fundamental theorem of calculus",
		Markup: `\int_{a}^{b} f(x) \, dx = F(b) - F(a)`,
	}},
}

// RecognizeSpecial matches the original, un-normalized input against the catalog.
func RecognizeSpecial(raw string) (Special, bool) {
	for _, e := range specialCatalog {
		if e.pattern.MatchString(raw) {
			return e.special, true
		}
	}
	return Special{}, false
}

// Catalog returns the catalog entries in match order.
func Catalog() []Special {
	out := make([]Special, len(specialCatalog))
	for i, e := range specialCatalog {
		out[i] = e.special
	}
	return out
}
