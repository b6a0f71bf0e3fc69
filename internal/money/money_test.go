package money

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"0", 0},
		{"0.00", 0},
		{"120", 12000},
		{"120.5", 12050},
		{"120.50", 12050},
		{"0.07", 7},
		{"-5.00", -500},
		{" 99.99 ", 9999},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", c.in, err)
		}
		if got.Cents() != c.cents {
			t.Fatalf("Parse(%q) = %d cents, want %d", c.in, got.Cents(), c.cents)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", ".", "12.345", "12,50", "abc", "12.x",
		"--5", "-+5", "12.-1", "12.+1", "1-2", "+5"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) should fail", in)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 7, 100, 12050, -500, 999999} {
		a := FromCents(cents)
		back, err := Parse(a.String())
		if err != nil {
			t.Fatalf("Parse(String(%d)) failed: %v", cents, err)
		}
		if back != a {
			t.Fatalf("round trip of %d cents gave %d", cents, back.Cents())
		}
	}
	if s := FromCents(-30).String(); s != "-0.30" {
		t.Fatalf("expected -0.30, got %s", s)
	}
}

func TestJSON(t *testing.T) {
	b, err := FromCents(12050).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(b) != `"120.50"` {
		t.Fatalf("expected quoted 120.50, got %s", b)
	}
	var a Amount
	if err := a.UnmarshalJSON([]byte(`"99.95"`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if a.Cents() != 9995 {
		t.Fatalf("expected 9995 cents, got %d", a.Cents())
	}
}
