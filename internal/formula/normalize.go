package formula

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Normalize rewrites free-form input (English words, LaTeX, calculator
// syntax) into canonical infix syntax. It never fails: input it cannot make
// sense of is reduced to its allowed characters.
//
// Stage order matters. Markup is desugared before structure is rewritten,
// function names are fixed before implicit multiplication could split them,
// phrase idioms run before single-word substitution, and spacing is only
// compacted after implicit multiplication has used it to separate tokens.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = desugar(s)
	s = restructure(s)
	s = normalizeFunctions(s)
	s = rewriteIdioms(s)
	s = substituteWords(s)
	s = convertNumerals(s)
	s = insertImplicitMultiplication(s)
	s = filterCharacters(s)
	return compact(s)
}

// ---- stage 1: markup desugaring

var (
	leftDelim    = regexp.MustCompile(`\\left\s*[(\[]`)
	rightDelim   = regexp.MustCompile(`\\right\s*[)\]]`)
	leftBar      = regexp.MustCompile(`\\left\s*\|`)
	rightBar     = regexp.MustCompile(`\\right\s*\|`)
	nullDelim    = regexp.MustCompile(`\\(?:left|right)\s*\.`)
	textWrapper  = regexp.MustCompile(`\\(?:mathrm|text|operatorname|mathbf|mathit)\s*\{([^{}]*)\}`)
	leibnizFrac  = regexp.MustCompile(`\\frac\s*\{\s*d\s*\}\s*\{\s*d\s*([a-zA-Z])\s*\}`)
	plusOrMinus  = regexp.MustCompile(`(?i)\bplus\s+or\s+minus\b`)
	markupTokens = strings.NewReplacer(
		`\cdot`, "*", `\times`, "*", "×", "*", "·", "*",
		`\div`, "/", "÷", "/",
		`\ldots`, "", `\cdots`, "", "…", "",
		`\,`, " ", `\!`, "", `\;`, " ", `\:`, " ", `\quad`, " ",
		`\pm`, "±", `\mp`, "±",
		`\infty`, "Infinity", "∞", "Infinity",
		`\pi`, "pi", "π", "pi",
		"−", "-", "–", "-",
		`\dfrac`, `\frac`, `\tfrac`, `\frac`,
		`\displaystyle`, "",
		`\int`, "∫",
		"$", "",
	)
)

func desugar(s string) string {
	s = leftDelim.ReplaceAllString(s, "(")
	s = rightDelim.ReplaceAllString(s, ")")
	s = leftBar.ReplaceAllString(s, "abs(")
	s = rightBar.ReplaceAllString(s, ")")
	s = nullDelim.ReplaceAllString(s, "")
	s = markupTokens.Replace(s)
	s = textWrapper.ReplaceAllString(s, "$1")
	s = leibnizFrac.ReplaceAllString(s, "d/d$1")
	s = plusOrMinus.ReplaceAllString(s, "±")
	return s
}

// ---- stage 2: structural rewrites

const maxStructuralPasses = 32

var (
	superscriptGroup = regexp.MustCompile(`\^\s*\{([^{}]*)\}`)
	subscriptGroup   = regexp.MustCompile(`_\s*\{([^{}]*)\}`)
	nthRoot          = regexp.MustCompile(`\\sqrt\s*\[([^\[\]]*)\]\s*\{([^{}]*)\}`)
	squareRoot       = regexp.MustCompile(`\\sqrt\s*\{([^{}]*)\}`)
	fraction         = regexp.MustCompile(`\\frac\s*\{([^{}]*)\}\s*\{([^{}]*)\}`)
	binomialGroup    = regexp.MustCompile(`\\binom\s*\{([^{}]*)\}\s*\{([^{}]*)\}`)
	radicalParen     = regexp.MustCompile(`√\s*\(`)
	radicalToken     = regexp.MustCompile(`√\s*([A-Za-z0-9.]+)`)
	emptyGroup       = regexp.MustCompile(`\(\s*\)`)
	superscriptChars = strings.NewReplacer("²", "^2", "³", "^3")
)

// restructure rewrites innermost brace groups first and repeats until nothing
// changes, so nested fractions and roots resolve from the inside out.
// Superscripts are handled before the generic brace rewrite so a braced
// exponent is converted exactly once.
func restructure(s string) string {
	for i := 0; i < maxStructuralPasses; i++ {
		prev := s
		s = superscriptGroup.ReplaceAllString(s, "^($1)")
		s = subscriptGroup.ReplaceAllString(s, "_($1)")
		s = nthRoot.ReplaceAllString(s, "($2)^(1/($1))")
		s = squareRoot.ReplaceAllString(s, "sqrt($1)")
		s = fraction.ReplaceAllString(s, "($1)/($2)")
		s = binomialGroup.ReplaceAllString(s, "binomial($1,$2)")
		if s == prev {
			break
		}
	}
	s = strings.ReplaceAll(s, `\sqrt`, "sqrt")
	s = radicalParen.ReplaceAllString(s, "sqrt(")
	s = radicalToken.ReplaceAllString(s, "sqrt($1)")
	s = strings.NewReplacer("{", "(", "}", ")").Replace(s)
	for emptyGroup.MatchString(s) {
		s = emptyGroup.ReplaceAllString(s, "")
	}
	return superscriptChars.Replace(s)
}

// ---- stage 3: named functions

var (
	latexFunction = regexp.MustCompile(`\\(arcsin|arccos|arctan|sinh|cosh|tanh|sin|cos|tan|cot|sec|csc|ln|log|exp)`)
	arcFunction   = regexp.MustCompile(`\barc(sin|cos|tan)\b`)
	functionWord  = regexp.MustCompile(`(?i)\b(?:(sine|cosine|tangent|natural\s+log(?:arithm)?|logarithm)(?:\s+of)?|(log|ln|sin|cos|tan|exp|abs)\s+of)\b`)
)

var spokenFunctionNames = map[string]string{
	"sine": "sin", "cosine": "cos", "tangent": "tan",
	"logarithm": "log", "natural log": "ln", "natural logarithm": "ln",
}

// parenFunctions are the names that get parentheses when written without them.
var parenFunctions = []string{
	"asin", "acos", "atan", "sinh", "cosh", "tanh", "sqrt",
	"sin", "cos", "tan", "cot", "sec", "csc", "exp", "abs", "log", "ln",
}

var parenFunctionSet = func() map[string]bool {
	m := make(map[string]bool, len(parenFunctions))
	for _, f := range parenFunctions {
		m[f] = true
	}
	return m
}()

func normalizeFunctions(s string) string {
	s = latexFunction.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.TrimPrefix(m, `\`)
		if strings.HasPrefix(name, "arc") {
			return "a" + strings.TrimPrefix(name, "arc")
		}
		return name
	})
	s = arcFunction.ReplaceAllString(s, "a$1")
	s = functionWord.ReplaceAllStringFunc(s, func(m string) string {
		sub := functionWord.FindStringSubmatch(m)
		if sub[2] != "" {
			return strings.ToLower(sub[2]) + " "
		}
		return spokenFunctionNames[strings.ToLower(strings.Join(strings.Fields(sub[1]), " "))] + " "
	})
	return insertFunctionParens(s)
}

// insertFunctionParens wraps the first token after a bare function name in
// parentheses ("sin x" -> "sin(x)") and splits a function name glued to a
// single-letter argument ("sinx" -> "sin(x)").
func insertFunctionParens(s string) string {
	r := []rune(s)
	var b strings.Builder
	for i := 0; i < len(r); {
		if !unicode.IsLetter(r[i]) || (i > 0 && (unicode.IsLetter(r[i-1]) || r[i-1] == '_')) {
			b.WriteRune(r[i])
			i++
			continue
		}
		j := i
		for j < len(r) && unicode.IsLetter(r[j]) {
			j++
		}
		word := string(r[i:j])
		lower := strings.ToLower(word)

		if parenFunctionSet[lower] {
			k := j
			for k < len(r) && r[k] == ' ' {
				k++
			}
			end := k
			for end < len(r) && !isTokenStop(r[end]) {
				end++
			}
			if k == len(r) || r[k] == '(' || r[k] == '^' || end == k {
				b.WriteString(lower)
				i = j
				continue
			}
			b.WriteString(lower + "(" + string(r[k:end]) + ")")
			i = end
			continue
		}

		if fn, ok := splitGluedFunction(lower); ok && (j == len(r) || r[j] != '(') {
			b.WriteString(fn + "(" + lower[len(fn):] + ")")
			i = j
			continue
		}
		b.WriteString(word)
		i = j
	}
	return b.String()
}

// splitGluedFunction matches a letter run made of a function name and exactly
// one more letter, preferring the longest name.
func splitGluedFunction(word string) (string, bool) {
	for _, fn := range parenFunctions {
		if len(word) == len(fn)+1 && strings.HasPrefix(word, fn) {
			return fn, true
		}
	}
	return "", false
}

func isTokenStop(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("()=,+-*/±", r)
}

// ---- stage 4: idiomatic phrases

var (
	solveForPrefix  = regexp.MustCompile(`(?i)^\s*solve\s+for\s+[a-z]\s*[:,]?\s*`)
	solvePrefix     = regexp.MustCompile(`(?i)^\s*solve\s*:?\s+`)
	leadingVerb     = regexp.MustCompile(`(?i)^\s*(?:(?:what\s+is|what's|calculate|compute|evaluate|find|simplify)\s+(?:the\s+)?|the\s+)`)
	subtractFrom    = regexp.MustCompile(`(?i)\bsubtract\s+(\S+)\s+from\s+(\S+)`)
	lessThan        = regexp.MustCompile(`(?i)(\S+)\s+less\s+than\s+(\S+)`)
	percentOf       = regexp.MustCompile(`(?i)(\S+?)\s*(?:percent|%)\s+of\s+(\S+)`)
	binaryOperation = regexp.MustCompile(`(?i)\b(?:the\s+)?(sum|difference|product|quotient)\s+of\s+(\S+)\s+and\s+(\S+)`)
	definiteOf      = regexp.MustCompile(`(?i)\b(?:the\s+)?(?:definite\s+)?integral\s+of\s+(.+?)\s+from\s+(\S+)\s+to\s+(\S+)`)
	integralOf      = regexp.MustCompile(`(?i)\b(?:the\s+)?(?:indefinite\s+)?integral\s+of\b`)
	derivativeOf    = regexp.MustCompile(`(?i)\b(?:the\s+)?derivative\s+of\s+(.+?)(?:\s+with\s+respect\s+to\s+([a-z]))?\s*$`)
	squareRootOf    = regexp.MustCompile(`(?i)\bsquare\s+root\s+of\s+(\([^()]*\)|[A-Za-z0-9.]+)`)
	cubeRootOf      = regexp.MustCompile(`(?i)\bcube\s+root\s+of\s+(\([^()]*\)|[A-Za-z0-9.]+)`)
	differentialEnd = regexp.MustCompile(`\s*d([a-zA-Z])\s*$`)
)

var binaryOperators = map[string]string{
	"sum": "+", "difference": "-", "product": "*", "quotient": "/",
}

func rewriteIdioms(s string) string {
	s = solveForPrefix.ReplaceAllString(s, "")
	s = solvePrefix.ReplaceAllString(s, "")
	s = leadingVerb.ReplaceAllString(s, "")
	s = subtractFrom.ReplaceAllString(s, "$2 - $1")
	s = lessThan.ReplaceAllString(s, "$2 - $1")
	s = percentOf.ReplaceAllString(s, "($1/100)*($2)")
	s = binaryOperation.ReplaceAllStringFunc(s, func(m string) string {
		sub := binaryOperation.FindStringSubmatch(m)
		return sub[2] + " " + binaryOperators[strings.ToLower(sub[1])] + " " + sub[3]
	})
	s = definiteOf.ReplaceAllStringFunc(s, func(m string) string {
		sub := definiteOf.FindStringSubmatch(m)
		body, v := sub[1], "x"
		if d := differentialEnd.FindStringSubmatch(body); d != nil {
			v = d[1]
			body = differentialEnd.ReplaceAllString(body, "")
		}
		return "∫_(" + sub[2] + ")^(" + sub[3] + ") " + body + " d" + v
	})
	s = integralOf.ReplaceAllString(s, "∫")
	s = derivativeOf.ReplaceAllStringFunc(s, func(m string) string {
		sub := derivativeOf.FindStringSubmatch(m)
		v := "x"
		if sub[2] != "" {
			v = strings.ToLower(sub[2])
		}
		return "d/d" + v + "(" + sub[1] + ")"
	})
	s = squareRootOf.ReplaceAllStringFunc(s, func(m string) string {
		arg := squareRootOf.FindStringSubmatch(m)[1]
		if strings.HasPrefix(arg, "(") {
			return "sqrt" + arg
		}
		return "sqrt(" + arg + ")"
	})
	s = cubeRootOf.ReplaceAllStringFunc(s, func(m string) string {
		arg := cubeRootOf.FindStringSubmatch(m)[1]
		if !strings.HasPrefix(arg, "(") {
			arg = "(" + arg + ")"
		}
		return arg + "^(1/3)"
	})
	return s
}

// ---- stage 5: spoken words

// spokenWords maps phrases to operator text. Phrases are matched whole and
// case-insensitively, longest first, so "is equal to" wins over "is".
var spokenWords = map[string]string{
	"plus": "+", "add": "+", "added to": "+", "sum": "+",
	"minus": "-", "subtract": "-", "take away": "-", "less": "-", "negative": "-",
	"times": "*", "multiplied by": "*", "product of": "*",
	"over": "/", "divided by": "/",
	"equals": "=", "is equal to": "=", "equal to": "=", "is": "=",
	"squared": "^2", "cubed": "^3",
	"to the power of": "^", "raised to the power of": "^", "raised to": "^",
	// Unbalanced: relies on a closing parenthesis already present in the input.
	"square root of": "sqrt(",
}

var spokenPattern = func() *regexp.Regexp {
	phrases := make([]string, 0, len(spokenWords))
	for p := range spokenWords {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	alts := make([]string, len(phrases))
	for i, p := range phrases {
		words := strings.Fields(p)
		for k, w := range words {
			words[k] = regexp.QuoteMeta(w)
		}
		alts[i] = strings.Join(words, `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}()

func substituteWords(s string) string {
	return spokenPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := strings.ToLower(strings.Join(strings.Fields(m), " "))
		op := spokenWords[key]
		if strings.HasSuffix(op, "(") {
			return " " + op
		}
		return " " + op + " "
	})
}

// ---- stage 7: implicit multiplication

// insertImplicitMultiplication makes juxtaposed products explicit: digit then
// letter, letter then digit, digit then "(", and ")" then a digit, letter or "(".
// Numbers in scientific notation stay whole.
func insertImplicitMultiplication(s string) string {
	r := []rune(s)
	var b strings.Builder
	for i := 0; i < len(r); {
		c := r[i]
		switch {
		case isDigit(c) || (c == '.' && i+1 < len(r) && isDigit(r[i+1])):
			j := scanNumber(r, i)
			b.WriteString(string(r[i:j]))
			if j < len(r) && (unicode.IsLetter(r[j]) || r[j] == '(') {
				b.WriteByte('*')
			}
			i = j
		case unicode.IsLetter(c):
			j := i
			for j < len(r) && unicode.IsLetter(r[j]) {
				j++
			}
			b.WriteString(string(r[i:j]))
			if j < len(r) && isDigit(r[j]) {
				b.WriteByte('*')
			}
			i = j
		default:
			b.WriteRune(c)
			if c == ')' && i+1 < len(r) && (unicode.IsLetter(r[i+1]) || isDigit(r[i+1]) || r[i+1] == '(') {
				b.WriteByte('*')
			}
			i++
		}
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanNumber returns the end of the number starting at i, including a
// decimal part and an exponent such as e-5.
func scanNumber(r []rune, i int) int {
	j := i
	for j < len(r) && isDigit(r[j]) {
		j++
	}
	if j < len(r) && r[j] == '.' {
		j++
		for j < len(r) && isDigit(r[j]) {
			j++
		}
	}
	if j < len(r) && (r[j] == 'e' || r[j] == 'E') {
		k := j + 1
		if k < len(r) && (r[k] == '+' || r[k] == '-') {
			k++
		}
		if k < len(r) && isDigit(r[k]) {
			j = k
			for j < len(r) && isDigit(r[j]) {
				j++
			}
		}
	}
	return j
}

// ---- stage 8: character filter and compaction

func filterCharacters(s string) string {
	return strings.Map(func(r rune) rune {
		if allowedRune(r) {
			return r
		}
		return ' '
	}, s)
}

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	spaceAroundOp = regexp.MustCompile(`\s*([+\-*/^=,±])\s*`)
	spaceInParens = regexp.MustCompile(`\(\s+`)
	spaceBeforeRP = regexp.MustCompile(`\s+\)`)
)

func compact(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = spaceAroundOp.ReplaceAllString(s, "$1")
	s = spaceInParens.ReplaceAllString(s, "(")
	s = spaceBeforeRP.ReplaceAllString(s, ")")
	return strings.TrimSpace(s)
}
