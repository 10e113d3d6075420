package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/algenova/internal/solver"
)

// Markdown renders a stored solution as a readable transcript.
func Markdown(out *FetchOutput) string {
	var b strings.Builder
	res := &out.Result

	fmt.Fprintf(&b, "# %s\n\n", inlineCode(res.OriginalFormula))
	fmt.Fprintf(&b, "- **Type:** %s\n", res.Type)
	fmt.Fprintf(&b, "- **Canonical form:** %s\n", inlineCode(res.CanonicalFormula))
	if res.Variable != "" {
		fmt.Fprintf(&b, "- **Variable:** %s\n", inlineCode(res.Variable))
	}
	if out.CreatedAt > 0 {
		fmt.Fprintf(&b, "- **Solved:** %s UTC\n", time.Unix(out.CreatedAt, 0).UTC().Format("2006-01-02 15:04"))
	}
	if !res.Lint.Valid {
		fmt.Fprintf(&b, "- **Input warnings:** %s\n", strings.Join(res.Lint.Errors, "; "))
	}

	if res.Explanation != "" {
		fmt.Fprintf(&b, "\n%s\n", res.Explanation)
	}

	if len(res.Steps) > 0 {
		b.WriteString("\n## Steps\n\n")
		for _, st := range res.Steps {
			fmt.Fprintf(&b, "%d. **%s:** %s  \n   %s\n", st.Index, st.Description, inlineCode(st.Expression), st.Explanation)
		}
	}

	b.WriteString("\n## Answer\n\n")
	b.WriteString(answerMarkdown(res.Answer))

	if len(res.Verification) > 0 {
		b.WriteString("\n## Verification\n\n")
		b.WriteString("| Solution | k | Left | Right | Correct |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, v := range res.Verification {
			k := ""
			if v.ParameterSample != nil {
				k = fmt.Sprintf("%d", *v.ParameterSample)
			}
			correct := "yes"
			if !v.IsCorrect {
				correct = "no"
			}
			left, right := v.LeftSide, v.RightSide
			if v.Error != "" {
				left, right = v.Error, ""
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				tableCell(v.Solution), k, tableCell(left), tableCell(right), correct)
		}
	}
	return b.String()
}

func answerMarkdown(a solver.Answer) string {
	if len(a.Values) == 0 {
		return "No real solution\n"
	}
	if !a.Multiple {
		return inlineCode(a.Values[0]) + "\n"
	}
	var b strings.Builder
	for _, v := range a.Values {
		fmt.Fprintf(&b, "- %s\n", inlineCode(v))
	}
	return b.String()
}

func inlineCode(s string) string {
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}

func tableCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
