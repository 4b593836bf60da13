package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"15000", 1500000, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0", 0, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"+3", 300, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1e3", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"0.995", 100, true},
		{"92233720368547757.999", 9223372036854775800, true},
		{"92233720368547758", 0, false},
		{"92233720368547758.99", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyUnitsTruncates(t *testing.T) {
	if got := (Money{Cents: 19999}).Units(); got != 199 {
		t.Fatalf("Units() = %d, want 199", got)
	}
	if got := FromUnits(42).Cents; got != 4200 {
		t.Fatalf("FromUnits(42) = %d cents, want 4200", got)
	}
}
