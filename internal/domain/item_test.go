package domain

import "testing"

func TestParseTriState(t *testing.T) {
	cases := []struct {
		in   string
		want TriState
	}{
		{"Yes", TriYes},
		{"yes", TriYes},
		{" YES ", TriYes},
		{"No", TriNo},
		{"false", TriNo},
		{"", TriUnknown},
		{"Not specified", TriUnknown},
	}
	for _, c := range cases {
		if got := ParseTriState(c.in); got != c.want {
			t.Errorf("ParseTriState(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTriStateLabel(t *testing.T) {
	if TriYes.Label() != "Yes" {
		t.Errorf("TriYes.Label() = %q", TriYes.Label())
	}
	if TriNo.Label() != "No" {
		t.Errorf("TriNo.Label() = %q", TriNo.Label())
	}
	// Unknown serializes as "No" per the legacy contract.
	if TriUnknown.Label() != "No" {
		t.Errorf("TriUnknown.Label() = %q", TriUnknown.Label())
	}
}

func TestItemHasAnyType(t *testing.T) {
	it := Item{TestTypes: []string{"Knowledge & Skills", "Technical"}}

	if !it.HasAnyType([]string{"technical"}) {
		t.Error("expected case-insensitive match")
	}
	if !it.HasAnyType([]string{"Cognitive", "Knowledge & Skills"}) {
		t.Error("expected OR semantics match")
	}
	if it.HasAnyType([]string{"Cognitive", "Leadership"}) {
		t.Error("expected no match")
	}
	if it.HasAnyType(nil) {
		t.Error("empty required set must not match")
	}
}

func TestItemDurationKnown(t *testing.T) {
	if (Item{DurationMinutes: 0}).DurationKnown() {
		t.Error("zero duration must be unknown")
	}
	if !(Item{DurationMinutes: 11}).DurationKnown() {
		t.Error("positive duration must be known")
	}
}
