package typeset

import "testing"

func TestToDisplayMarkup(t *testing.T) {
	f := New()
	tests := []struct {
		in   string
		want string
	}{
		{"x^2", "x^{2}"},
		{"x = 4", "x = 4"},
		{"x = -2 or x = 2", `x = -2 \text{ or } x = 2`},
		{"sqrt(x)/2", `\frac{\sqrt{x}}{2}`},
		{"= 14", "= 14"},
		{"f(x) = x^2", `f\left(x\right) = x^{2}`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := f.ToDisplayMarkup(tt.in); got != tt.want {
				t.Errorf("ToDisplayMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToDisplayMarkup_FallsBackToInput(t *testing.T) {
	f := New()
	for _, in := range []string{
		"∫ x^2 dx = x^3/3 + C",
		"f'(x) = 2*x",
		"(x + 1",
		"",
	} {
		if got := f.ToDisplayMarkup(in); got != in {
			t.Errorf("ToDisplayMarkup(%q) = %q, want input unchanged", in, got)
		}
	}
}
