package main

import "testing"

func TestFormatVND(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0₫"},
		{950, "950₫"},
		{1000, "1.000₫"},
		{1250000, "1.250.000₫"},
		{-35000, "-35.000₫"},
	}
	for _, tc := range cases {
		if got := formatVND(tc.in); got != tc.want {
			t.Fatalf("formatVND(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
