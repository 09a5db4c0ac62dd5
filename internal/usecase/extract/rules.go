package extract

import "regexp"

// durationRule binds a compiled pattern to the capture groups holding the
// numeric bound and its unit. Rules are evaluated in order and every match
// is considered; the smallest resulting upper bound wins.
type durationRule struct {
	re        *regexp.Regexp
	numGroup  int
	unitGroup int // empty unit = minutes
}

var durationRules = []durationRule{
	// "30-45 minutes": a range yields its upper end.
	{regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*(minutes?|mins?|hours?|hrs?)\b`), 2, 3},
	// "under 40 minutes", "within 1 hour", "less than 40", "maximum of 40".
	{regexp.MustCompile(`(?:under|within|less\s+than|at\s+most|no\s+more\s+than|max(?:imum)?(?:\s+of)?)\s+(\d+)\s*(minutes?|mins?|hours?|hrs?)?\b`), 1, 2},
	// Bare mentions: "completed in 40 minutes", "a 1 hour assessment".
	{regexp.MustCompile(`(\d+)\s*(minutes?|mins?|hours?|hrs?)\b`), 1, 2},
}

var irtPattern = regexp.MustCompile(`\birt\b`)

// defaultTypeSynonyms maps lower-case query phrases to the catalog type tags
// they imply. OR semantics downstream: a query naming several domains asks
// for a package of complementary assessments, not their intersection.
// Developer-ish phrases map to both Technical and Knowledge & Skills because
// the catalog files tag skill tests under either, depending on vintage.
var defaultTypeSynonyms = map[string][]string{
	"cognitive":         {"Cognitive"},
	"reasoning":         {"Cognitive"},
	"aptitude":          {"Cognitive"},
	"problem solving":   {"Cognitive"},
	"personality":       {"Personality/Behavioral"},
	"behavioral":        {"Personality/Behavioral"},
	"behavioural":       {"Personality/Behavioral"},
	"leadership":        {"Leadership"},
	"executive":         {"Leadership"},
	"coding test":       {"Technical", "Knowledge & Skills"},
	"coding assessment": {"Technical", "Knowledge & Skills"},
	"programming":       {"Technical", "Knowledge & Skills"},
	"technical":         {"Technical", "Knowledge & Skills"},
	"sales":             {"Role-specific"},
	"customer service":  {"Role-specific"},
	"administrative":    {"Role-specific"},
}

// defaultSkillTerms is the dictionary of known skill tokens extracted as soft
// keywords, taken from the catalog vocabulary. The trailing role phrases are
// not skills but soft-boost items whose name or description targets the role.
var defaultSkillTerms = []string{
	"java", "python", "javascript", "typescript", "sql", "c#", "c++",
	"ruby", "php", "golang", "scala", "swift", "selenium", "html", "css",
	"react", "angular", "vue", "qa", "testing", "front-end", "database",
	"agile", "problem solving", "verbal reasoning", "numerical reasoning",
	"analytical", "communication", "collaboration", "teamwork",
	"financial", "bank", "banking", "entry level", "administrative",
	"customer service", "sales",
}

// keywordStopwords are capitalized tokens that are not proper nouns worth
// keeping as soft keywords.
var keywordStopwords = map[string]struct{}{
	"i": {}, "a": {}, "an": {}, "the": {}, "we": {}, "our": {},
	"need": {}, "needs": {}, "looking": {}, "want": {}, "hiring": {},
	"find": {}, "assessment": {}, "assessments": {}, "test": {}, "tests": {},
}
