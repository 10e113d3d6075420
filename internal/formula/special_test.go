package formula

import "testing"

func TestRecognizeSpecial(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"what is the quadratic formula", "Quadratic formula"},
		{"Quadratic Formula", "Quadratic formula"},
		{"binomial theorem", "Binomial theorem"},
		{"Euler's identity", "Euler's identity"},
		{"euler formula", "Euler's formula"},
		{"Pythagorean theorem", "Pythagorean theorem"},
		{"pythagorean identity", "Pythagorean trigonometric identity"},
		{"taylor series", "Taylor series"},
		{"integration by parts", "Integration by parts"},
		{"difference of squares", "Difference of squares"},
		{"fundamental theorem of calculus", "Fundamental theorem of calculus"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := RecognizeSpecial(tt.raw)
			if !ok {
				t.Fatalf("RecognizeSpecial(%q) found nothing", tt.raw)
			}
			if got.Name != tt.want {
				t.Errorf("RecognizeSpecial(%q).Name = %q, want %q", tt.raw, got.Name, tt.want)
			}
			if got.Markup == "" {
				t.Errorf("RecognizeSpecial(%q).Markup is empty", tt.raw)
			}
		})
	}
}

func TestRecognizeSpecial_NoMatch(t *testing.T) {
	for _, raw := range []string{"x^2 - 4 = 0", "2+3", "solve the quadratic x^2 = 4", "the sum of 3 and 4", ""} {
		if got, ok := RecognizeSpecial(raw); ok {
			t.Errorf("RecognizeSpecial(%q) = %q, want no match", raw, got.Name)
		}
	}
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	if len(c) != len(specialCatalog) {
		t.Fatalf("len(Catalog()) = %d, want %d", len(c), len(specialCatalog))
	}
	if c[0].Name != "Quadratic formula" {
		t.Errorf("Catalog()[0] = %q", c[0].Name)
	}
	c[0].Name = "changed"
	if specialCatalog[0].special.Name == "changed" {
		t.Error("Catalog() exposes the underlying entries")
	}
}
