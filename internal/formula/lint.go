package formula

import (
	"fmt"
	"strings"
	"unicode"
)

// LintResult is the advisory outcome of Lint. It never blocks solving.
type LintResult struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors"`
}

const operatorChars = "+-*/^"

// Lint checks parenthesis balance, the character set and doubled operators.
// Every check runs even if an earlier one failed.
func Lint(canonical string) LintResult {
	errs := []string{}

	depth := 0
	for i, r := range []rune(canonical) {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				errs = append(errs, fmt.Sprintf("unmatched closing parenthesis at position %d", i))
				depth = 0
			}
		}
	}
	if depth > 0 {
		errs = append(errs, fmt.Sprintf("%d unmatched opening parenthesis(es)", depth))
	}

	var bad []string
	seen := make(map[rune]bool)
	for _, r := range canonical {
		if allowedRune(r) || seen[r] {
			continue
		}
		seen[r] = true
		bad = append(bad, string(r))
	}
	if len(bad) > 0 {
		errs = append(errs, "invalid characters: "+strings.Join(bad, " "))
	}

	compact := strings.Join(strings.Fields(canonical), "")
	runes := []rune(compact)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		if !strings.ContainsRune(operatorChars, prev) || !strings.ContainsRune(operatorChars, cur) {
			continue
		}
		if prev == '*' && cur == '*' {
			continue
		}
		errs = append(errs, fmt.Sprintf("consecutive operators %q", string([]rune{prev, cur})))
		break
	}

	return LintResult{Valid: len(errs) == 0, Errors: errs}
}

func allowedRune(r rune) bool {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return true
	case unicode.IsSpace(r):
		return true
	case strings.ContainsRune("+-*/^().,=_'±∫√", r):
		return true
	}
	return false
}
