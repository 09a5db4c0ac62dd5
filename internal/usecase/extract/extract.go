// Package extract parses free-text queries into structured constraint sets.
// Extraction is pure pattern matching over explicit rule tables; anything it
// fails to recognize degrades to "unconstrained", never to an error.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/assessdex/assessdex/internal/domain"
)

// Extractor turns a query into a domain.ConstraintSet.
type Extractor struct {
	typeSynonyms map[string][]string
	phraseOrder  []string // sorted synonym phrases for deterministic scans
	skills       []skillPattern
}

type skillPattern struct {
	term string
	re   *regexp.Regexp
}

// New creates an extractor. Nil synonyms or skill terms select the built-in
// tables derived from the catalog vocabulary.
func New(typeSynonyms map[string][]string, skillTerms []string) *Extractor {
	if typeSynonyms == nil {
		typeSynonyms = defaultTypeSynonyms
	}
	if skillTerms == nil {
		skillTerms = defaultSkillTerms
	}

	phrases := make([]string, 0, len(typeSynonyms))
	for p := range typeSynonyms {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)

	skills := make([]skillPattern, 0, len(skillTerms))
	for _, term := range skillTerms {
		// Hand-rolled boundaries: \b misbehaves around "c++" and "c#".
		re := regexp.MustCompile(`(?:^|[^a-z0-9+#])` + regexp.QuoteMeta(strings.ToLower(term)) + `(?:[^a-z0-9+#]|$)`)
		skills = append(skills, skillPattern{term: strings.ToLower(term), re: re})
	}

	return &Extractor{
		typeSynonyms: typeSynonyms,
		phraseOrder:  phrases,
		skills:       skills,
	}
}

// Extract parses the query. Pure function, no I/O.
func (e *Extractor) Extract(query string) domain.ConstraintSet {
	lower := strings.ToLower(query)

	return domain.ConstraintSet{
		MaxDurationMinutes: maxDuration(lower),
		RequiredTypes:      e.requiredTypes(lower),
		RemoteRequired:     strings.Contains(lower, "remote") || strings.Contains(lower, "online"),
		AdaptiveRequired:   strings.Contains(lower, "adaptive") || irtPattern.MatchString(lower),
		Keywords:           e.keywords(query, lower),
	}
}

// maxDuration scans the duration rule table in order; every match across
// every rule is considered and the smallest explicit upper bound wins.
func maxDuration(lower string) int {
	best := 0
	for _, rule := range durationRules {
		for _, m := range rule.re.FindAllStringSubmatch(lower, -1) {
			n, err := strconv.Atoi(m[rule.numGroup])
			if err != nil || n <= 0 {
				continue
			}
			if rule.unitGroup < len(m) && strings.HasPrefix(m[rule.unitGroup], "h") {
				n *= 60
			}
			if best == 0 || n < best {
				best = n
			}
		}
	}
	return best
}

// requiredTypes unions the tags of every synonym phrase found in the query.
func (e *Extractor) requiredTypes(lower string) []string {
	var types []string
	seen := make(map[string]struct{})
	for _, phrase := range e.phraseOrder {
		if !strings.Contains(lower, phrase) {
			continue
		}
		for _, tag := range e.typeSynonyms[phrase] {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			types = append(types, tag)
		}
	}
	return types
}

// keywords collects known-skill hits in order of appearance, then
// capitalized proper-noun-like tokens the dictionary missed.
func (e *Extractor) keywords(query, lower string) []string {
	type hit struct {
		pos  int
		term string
	}
	var hits []hit
	seen := make(map[string]struct{})

	for _, sp := range e.skills {
		loc := sp.re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		if _, dup := seen[sp.term]; dup {
			continue
		}
		seen[sp.term] = struct{}{}
		hits = append(hits, hit{pos: loc[0], term: sp.term})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.term)
	}

	for _, token := range strings.Fields(query) {
		token = strings.Trim(token, ".,;:!?()'\"")
		if len(token) < 2 {
			continue
		}
		r := []rune(token)[0]
		if !unicode.IsUpper(r) {
			continue
		}
		lowered := strings.ToLower(token)
		if _, stop := keywordStopwords[lowered]; stop {
			continue
		}
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		out = append(out, lowered)
	}

	return out
}
