package extract

import (
	"reflect"
	"testing"
)

func TestExtract_Duration(t *testing.T) {
	e := New(nil, nil)

	cases := []struct {
		query string
		want  int
	}{
		{"Python developer assessment under 15 minutes", 15},
		{"cognitive test for analyst role within 45 mins", 45},
		{"completed in 40 minutes", 40},
		{"less than 30 minutes please", 30},
		{"maximum of 25 mins", 25},
		{"max 20 minutes", 20},
		{"a 30-45 minutes battery", 45},
		{"something within 1 hour", 60},
		{"under 2 hours total", 120},
		{"no duration mentioned at all", 0},
		{"team of 5 developers", 0}, // bare number without a time unit
	}
	for _, c := range cases {
		got := e.Extract(c.query)
		if got.MaxDurationMinutes != c.want {
			t.Errorf("Extract(%q).MaxDurationMinutes = %d, want %d", c.query, got.MaxDurationMinutes, c.want)
		}
	}
}

func TestExtract_SmallestBoundWins(t *testing.T) {
	e := New(nil, nil)
	got := e.Extract("two tests, one 40 minutes and one under 25 minutes")
	if got.MaxDurationMinutes != 25 {
		t.Errorf("smallest bound must win, got %d", got.MaxDurationMinutes)
	}
}

func TestExtract_Types(t *testing.T) {
	e := New(nil, nil)

	got := e.Extract("cognitive test for an analyst")
	if !reflect.DeepEqual(got.RequiredTypes, []string{"Cognitive"}) {
		t.Errorf("RequiredTypes = %v, want [Cognitive]", got.RequiredTypes)
	}

	// A query naming several domains unions the tags (OR semantics).
	got = e.Extract("cognitive and personality assessments for leadership hires")
	want := map[string]bool{"Cognitive": true, "Personality/Behavioral": true, "Leadership": true}
	if len(got.RequiredTypes) != 3 {
		t.Fatalf("RequiredTypes = %v, want 3 tags", got.RequiredTypes)
	}
	for _, tag := range got.RequiredTypes {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}

	got = e.Extract("programming challenge")
	if len(got.RequiredTypes) != 2 {
		t.Errorf("programming must imply Technical and Knowledge & Skills, got %v", got.RequiredTypes)
	}

	if got := e.Extract("something generic"); got.RequiredTypes != nil {
		t.Errorf("no type phrases must yield nil, got %v", got.RequiredTypes)
	}
}

func TestExtract_TypesDeterministic(t *testing.T) {
	e := New(nil, nil)
	first := e.Extract("cognitive and personality and sales").RequiredTypes
	for i := 0; i < 20; i++ {
		if got := e.Extract("cognitive and personality and sales").RequiredTypes; !reflect.DeepEqual(got, first) {
			t.Fatalf("type order not deterministic: %v vs %v", got, first)
		}
	}
}

func TestExtract_RemoteAdaptive(t *testing.T) {
	e := New(nil, nil)

	got := e.Extract("remote testing for Java developers")
	if !got.RemoteRequired || got.AdaptiveRequired {
		t.Errorf("remote=%v adaptive=%v, want true/false", got.RemoteRequired, got.AdaptiveRequired)
	}

	got = e.Extract("an adaptive assessment")
	if !got.AdaptiveRequired {
		t.Error("expected adaptive from 'adaptive'")
	}

	got = e.Extract("IRT based screening")
	if !got.AdaptiveRequired {
		t.Error("expected adaptive from 'IRT'")
	}

	// "irt" must match as a word, not inside "shirt".
	got = e.Extract("t-shirt printing operator")
	if got.AdaptiveRequired {
		t.Error("'shirt' must not trigger adaptive")
	}

	got = e.Extract("online assessment platform")
	if !got.RemoteRequired {
		t.Error("expected remote from 'online'")
	}
}

func TestExtract_Keywords(t *testing.T) {
	e := New(nil, nil)

	got := e.Extract("I am hiring Java developers who know SQL and Selenium")
	want := []string{"java", "sql", "selenium"}
	if !reflect.DeepEqual(got.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", got.Keywords, want)
	}

	// "javascript" must not be reported as "java".
	got = e.Extract("javascript engineer")
	if !reflect.DeepEqual(got.Keywords, []string{"javascript"}) {
		t.Errorf("Keywords = %v, want [javascript]", got.Keywords)
	}

	// Proper-noun-like tokens outside the dictionary are kept.
	got = e.Extract("screening for Salesforce admins")
	found := false
	for _, k := range got.Keywords {
		if k == "salesforce" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected capitalized token 'salesforce' in %v", got.Keywords)
	}
}

func TestExtract_RoleKeywords(t *testing.T) {
	e := New(nil, nil)

	got := e.Extract("entry level administrative assistant for a bank")
	want := []string{"entry level", "administrative", "bank"}
	if !reflect.DeepEqual(got.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", got.Keywords, want)
	}

	got = e.Extract("screening candidates for financial services roles")
	if !reflect.DeepEqual(got.Keywords, []string{"financial"}) {
		t.Errorf("Keywords = %v, want [financial]", got.Keywords)
	}

	// "bank" must match as a word, not inside "banking"; "banking" has its
	// own dictionary entry.
	got = e.Extract("banking operations associate")
	if !reflect.DeepEqual(got.Keywords, []string{"banking"}) {
		t.Errorf("Keywords = %v, want [banking]", got.Keywords)
	}
}

func TestExtract_UnparseableIsUnconstrained(t *testing.T) {
	e := New(nil, nil)
	for _, q := range []string{"", "   ", "!!!", "zzzz qqqq"} {
		got := e.Extract(q)
		if got.HasDuration() || got.HasTypes() || got.RemoteRequired || got.AdaptiveRequired {
			t.Errorf("Extract(%q) must be unconstrained, got %+v", q, got)
		}
	}
}

func TestExtract_CustomTables(t *testing.T) {
	e := New(
		map[string][]string{"numeracy": {"Cognitive"}},
		[]string{"excel"},
	)

	got := e.Extract("numeracy screening with Excel")
	if !reflect.DeepEqual(got.RequiredTypes, []string{"Cognitive"}) {
		t.Errorf("custom synonyms ignored: %v", got.RequiredTypes)
	}
	if len(got.Keywords) == 0 || got.Keywords[0] != "excel" {
		t.Errorf("custom skill terms ignored: %v", got.Keywords)
	}

	// Built-in phrases are replaced, not merged.
	got = e.Extract("personality profile")
	if got.RequiredTypes != nil {
		t.Errorf("built-in table leaked through: %v", got.RequiredTypes)
	}
}

func TestExtract_CombinedQuery(t *testing.T) {
	e := New(nil, nil)
	got := e.Extract("Python developer assessment under 15 minutes")

	if got.MaxDurationMinutes != 15 {
		t.Errorf("MaxDurationMinutes = %d, want 15", got.MaxDurationMinutes)
	}
	if len(got.Keywords) == 0 || got.Keywords[0] != "python" {
		t.Errorf("Keywords = %v, want python first", got.Keywords)
	}
}
