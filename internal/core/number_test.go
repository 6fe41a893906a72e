package core

import "testing"

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1,234,567", "1234567", true},
		{" 1,234.50 ", "1234.5", true},
		{"12.5%", "12.5", true},
		{"-9.1%", "-9.1", true},
		{"0", "0", true},
		{"", "", false},
		{"  ", "", false},
		{"%", "", false},
		{"abc", "", false},
		{"#DIV/0!", "", false},
		{"1.2.3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseNumber(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(dec(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParsePercent(t *testing.T) {
	if p := ParsePercent("13%"); !p.Valid || p.Value != 13 {
		t.Fatalf("unexpected %+v", p)
	}
	if p := ParsePercent("n/a"); p.Valid {
		t.Fatalf("expected invalid percent")
	}
}

func TestShare(t *testing.T) {
	if got := Share(dec("25"), dec("200")); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := Share(dec("25"), dec("0")); got != 0 {
		t.Fatalf("expected 0 for zero total, got %v", got)
	}
}
