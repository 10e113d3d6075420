package formula

import "regexp"

var alphaRun = regexp.MustCompile(`[a-zA-Z]+`)

// reservedNames are function and constant names that are never the unknown.
var reservedNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"asin": true, "acos": true, "atan": true, "atan2": true,
	"sinh": true, "cosh": true, "tanh": true,
	"log": true, "ln": true, "sqrt": true, "abs": true,
	"det": true, "inv": true, "transpose": true, "trace": true, "norm": true,
	"sum": true, "integrate": true, "diff": true, "series": true, "binomial": true,
	"exp": true, "mod": true, "re": true, "im": true, "arg": true, "conj": true,
	"floor": true, "ceil": true, "sign": true,
	"pi": true, "e": true, "Infinity": true, "NaN": true, "i": true,
}

// MainVariable picks the unknown of a canonical formula: x when present,
// otherwise the first alphabetic run that is not a reserved name, otherwise x.
func MainVariable(canonical string) string {
	first := ""
	for _, tok := range alphaRun.FindAllString(canonical, -1) {
		if reservedNames[tok] {
			continue
		}
		if tok == "x" {
			return "x"
		}
		if first == "" {
			first = tok
		}
	}
	if first == "" {
		return "x"
	}
	return first
}
