package domain

import "strings"

// TriState is a yes/no/unknown support flag.
type TriState int8

const (
	// TriUnknown means the catalog does not say either way.
	TriUnknown TriState = iota
	// TriYes means the capability is supported.
	TriYes
	// TriNo means the capability is not supported.
	TriNo
)

// ParseTriState maps catalog flag strings ("Yes"/"No", any case) to a TriState.
// Anything else is Unknown.
func ParseTriState(s string) TriState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true":
		return TriYes
	case "no", "false":
		return TriNo
	default:
		return TriUnknown
	}
}

// Label serializes the flag for the legacy API contract, which only knows
// "Yes" and "No". Unknown maps to "No", matching the original catalog export.
func (t TriState) Label() string {
	if t == TriYes {
		return "Yes"
	}
	return "No"
}

func (t TriState) String() string {
	switch t {
	case TriYes:
		return "yes"
	case TriNo:
		return "no"
	default:
		return "unknown"
	}
}

// Item is one catalog assessment record. Immutable after load.
type Item struct {
	URL             string // unique identifier
	Name            string
	Description     string
	DurationMinutes int // 0 = unknown
	TestTypes       []string
	Remote          TriState
	Adaptive        TriState
	Ordinal         int // position in the catalog file, used for deterministic tie-breaks
}

// DurationKnown reports whether the catalog specifies a duration for the item.
func (i Item) DurationKnown() bool {
	return i.DurationMinutes > 0
}

// HasAnyType reports whether the item carries at least one of the given type
// tags (OR semantics). Tags are compared case-insensitively.
func (i Item) HasAnyType(types []string) bool {
	for _, want := range types {
		for _, have := range i.TestTypes {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}
