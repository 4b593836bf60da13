package core

import "testing"

func TestDisplayNameAnonymized(t *testing.T) {
	d := Donor{Name: "Real Person", Anonymous: true}
	if got := d.DisplayName(); got != AnonymousName {
		t.Fatalf("DisplayName() = %q, want %q", got, AnonymousName)
	}
	d.Anonymous = false
	if got := d.DisplayName(); got != "Real Person" {
		t.Fatalf("DisplayName() = %q, want stored name", got)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in    string
		want  Date
		ok    bool
		empty bool
	}{
		{in: "2024-03-15", want: NewDate(2024, 3, 15), ok: true},
		{in: "2024-03-15T10:30:00Z", want: NewDate(2024, 3, 15), ok: true},
		{in: "", ok: true, empty: true},
		{in: "15/03/2024", ok: false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if tc.empty {
			if !got.IsEmpty() {
				t.Fatalf("%q expected undated, got %v", tc.in, got)
			}
			continue
		}
		if !got.Equal(tc.want.Time) {
			t.Fatalf("%q = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDonorValidate(t *testing.T) {
	good := Donor{Name: "A", Amount: FromUnits(10), Date: NewDate(2024, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	anon := Donor{Anonymous: true, Amount: FromUnits(10)}
	if err := anon.Validate(); err != nil {
		t.Fatalf("anonymous donor without name should be valid, got %v", err)
	}
	bads := []Donor{
		{Name: "A", Amount: Money{Cents: -1}},
		{Name: "  ", Amount: FromUnits(1)},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
