package assessdex

import (
	"go.uber.org/zap"

	"github.com/assessdex/assessdex/internal/domain"
	recommenduc "github.com/assessdex/assessdex/internal/usecase/recommend"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	catalogPath string
	items       []domain.Item

	embedder  domain.Embedder
	batchSize int

	params        recommenduc.Params
	cacheCapacity int
	typeSynonyms  map[string][]string
	skillTerms    []string

	logger *zap.Logger
}

// WithCatalogPath loads the catalog from a JSON file at construction time.
func WithCatalogPath(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithAssessments supplies the catalog directly, bypassing file loading.
// Catalog order is preserved as the ranking tie-breaker.
func WithAssessments(assessments []Assessment) Option {
	return optionFunc(func(c *clientConfig) {
		items := make([]domain.Item, len(assessments))
		for i, a := range assessments {
			items[i] = itemFromAssessment(a, i)
		}
		c.items = items
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = &embedderAdapter{inner: e}
	})
}

// WithBatchSize sets how many catalog texts are embedded per provider call
// during index builds. Default: 32.
func WithBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		if size > 0 {
			c.batchSize = size
		}
	})
}

// WithAlpha sets the weight of semantic similarity in the final score,
// in (0, 1]. Default: 0.7.
func WithAlpha(alpha float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.params.Alpha = alpha
	})
}

// WithOverfetch sizes the candidate pool retrieved before constraint
// filtering: N = max(maxResults*multiplier, floor). Defaults: 5, 20.
func WithOverfetch(multiplier, floor int) Option {
	return optionFunc(func(c *clientConfig) {
		c.params.OverfetchMultiplier = multiplier
		c.params.OverfetchFloor = floor
	})
}

// WithResultCacheCapacity bounds the LRU of memoized query results.
// Default: 256.
func WithResultCacheCapacity(capacity int) Option {
	return optionFunc(func(c *clientConfig) {
		if capacity > 0 {
			c.cacheCapacity = capacity
		}
	})
}

// WithTypeSynonyms replaces the built-in query-phrase to type-tag table.
func WithTypeSynonyms(synonyms map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.typeSynonyms = synonyms
	})
}

// WithSkillTerms replaces the built-in skill keyword dictionary.
func WithSkillTerms(terms []string) Option {
	return optionFunc(func(c *clientConfig) {
		c.skillTerms = terms
	})
}

// WithLogger enables structured logging for client operations.
// Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
