package recommend

import (
	"context"

	"github.com/assessdex/assessdex/internal/domain"
)

// Retriever answers similarity queries against the active vector index.
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]domain.Candidate, error)
	// Generation identifies the active index snapshot; 0 = never built.
	Generation() uint64
}

// Extractor parses a query into a constraint set.
type Extractor interface {
	Extract(query string) domain.ConstraintSet
}

// ResultCache memoizes ranked results per index generation.
type ResultCache interface {
	Get(key string, generation uint64) ([]domain.Recommendation, bool)
	Add(key string, generation uint64, recs []domain.Recommendation)
}
