package domain

import "testing"

func TestIsValidStructuredQuery(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", false},
		{"blank", "   ", false},
		{"two tokens", "only two", false},
		{"three tokens all numeric", "10 20 30", false},
		{"four tokens last three numeric", "shoes 10 20 30", true},
		{"six tokens korean prefix", "단백질 제품 100개 60000 1 20", true},
		{"ascii equivalent", "protein snack 60000 1 20", true},
		{"last token non numeric", "shoes 10 20 cheap", false},
		{"middle of suffix non numeric", "shoes 10 x 30", false},
		{"negative number", "shoes 10 20 -30", false},
		{"decimal number", "shoes 10 20 3.5", false},
		{"non ascii digits", "shoes 10 20 ３０", false},
		{"double space inside suffix", "shoes 10 20  30", false},
		{"double space before suffix counts empty token", "shoes  10 20 30", true},
		{"leading and trailing space", " shoes 10 20 30 ", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidStructuredQuery(tc.input); got != tc.want {
				t.Errorf("IsValidStructuredQuery(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}
