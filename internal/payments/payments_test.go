package payments

import "testing"

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{19.99, 1999},
		{0.01, 1},
		{100, 10000},
		{10.5, 1050},
		{123.45, 12345},
	}
	for _, c := range cases {
		if got := MinorUnits(c.in); got != c.want {
			t.Fatalf("MinorUnits(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
