// README: Quantity parsing tests.
package types

import "testing"

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"2", 2000, false},
		{"2kg", 2000, false},
		{"2 kg", 2000, false},
		{"1.5", 1500, false},
		{"1.5kg", 1500, false},
		{"0.5", 500, false},
		{".5", 500, false},
		{"2किग्रा", 2000, false},
		{"2 किलो", 2000, false},
		{"KG", 1000, false}, // bare unit defaults to one
		{"", 1000, false},
		{"500", 500000, false},
		{"abc", 0, true},
		{"1.2345", 0, true}, // more precision than we keep
		{"-2", 0, true},
		{"0", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseQuantity(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseQuantity(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseQuantity(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestQuantityString(t *testing.T) {
	cases := []struct {
		in   Quantity
		want string
	}{
		{2000, "2"},
		{1500, "1.5"},
		{500, "0.5"},
		{1250, "1.25"},
		{1000, "1"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Quantity(%d).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}
