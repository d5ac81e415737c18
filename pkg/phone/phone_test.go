package phone

import "testing"

func TestCanonical_StripsFormatting(t *testing.T) {
	cases := map[string]string{
		"555-1234":         "5551234",
		"5551234":          "5551234",
		"(555) 123-4567":   "5551234567",
		"+33 6 00 00 00 0": "+33600000000",
		" 0600000000 ":     "0600000000",
		"555.123.4567":     "5551234567",
	}
	for in, want := range cases {
		got, err := Canonical(in)
		if err != nil {
			t.Fatalf("Canonical(%q): unexpected err: %v", in, err)
		}
		if got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonical_SameKeyForEquivalentForms(t *testing.T) {
	a, err := Canonical("555-1234")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Canonical("5551234")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("equivalent numbers map to different keys: %q vs %q", a, b)
	}
}

func TestCanonical_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "+", "555x1234", "anonymous"} {
		if _, err := Canonical(in); err == nil {
			t.Fatalf("Canonical(%q): expected error", in)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("5551234"); got != "555-1234" {
		t.Fatalf("got %q", got)
	}
	if got := Display("5551234567"); got != "555-123-4567" {
		t.Fatalf("got %q", got)
	}
	if got := Display("+33600000000"); got != "+33600000000" {
		t.Fatalf("got %q", got)
	}
}
