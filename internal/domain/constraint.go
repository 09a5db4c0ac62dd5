package domain

// ConstraintSet is the structured interpretation of a free-text query.
// Zero values mean "no constraint". Duration and type constraints are hard
// filters during ranking; remote/adaptive/keywords only adjust the score.
type ConstraintSet struct {
	MaxDurationMinutes int      // 0 = unconstrained
	RequiredTypes      []string // empty = unconstrained; an item qualifies on any match
	RemoteRequired     bool
	AdaptiveRequired   bool
	Keywords           []string // ordered extracted terms, soft scoring signal only
}

// HasDuration reports whether a duration upper bound was extracted.
func (c ConstraintSet) HasDuration() bool {
	return c.MaxDurationMinutes > 0
}

// HasTypes reports whether at least one required type was extracted.
func (c ConstraintSet) HasTypes() bool {
	return len(c.RequiredTypes) > 0
}

// HasSoft reports whether any soft signal is present. Without soft signals
// the constraint score is a constant and ranking reduces to pure similarity.
func (c ConstraintSet) HasSoft() bool {
	return c.RemoteRequired || c.AdaptiveRequired || len(c.Keywords) > 0
}
