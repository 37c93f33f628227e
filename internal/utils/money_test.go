package utils

import "testing"

func TestFormatRupee(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "Rs 0"},
		{40, "Rs 40"},
		{1500, "Rs 1,500"},
		{1234567, "Rs 1,234,567"},
		{-250, "-Rs 250"},
	}
	for _, tc := range cases {
		if got := FormatRupee(tc.in); got != tc.want {
			t.Fatalf("FormatRupee(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
