package team

import "testing"

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Royal Challengers Bengaluru", want: "royal challengers bengaluru"},
		{in: "  Sri-Lanka  ", want: "sri lanka"},
		{in: "St. Kitts & Nevis Patriots", want: "st kitts nevis patriots"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Fatalf("NormalizeName(%q)=%q want=%q", tt.in, got, tt.want)
		}
	}
}
