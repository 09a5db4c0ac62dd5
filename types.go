package assessdex

import (
	"context"
	"fmt"

	"github.com/assessdex/assessdex/internal/domain"
)

// Embedder is the public text vectorization contract. Implementations may
// additionally provide `HealthCheck(ctx) error` to participate in Health.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Assessment is one catalog entry.
type Assessment struct {
	URL             string
	Name            string
	Description     string
	DurationMinutes int // 0 = unknown
	TestTypes       []string
	Remote          bool
	Adaptive        bool
}

// Recommendation is a ranked catalog entry.
type Recommendation struct {
	Assessment Assessment
	Similarity float64 // semantic similarity in [0,1]
	Score      float64 // blended final score in [0,1]
}

func assessmentFromItem(it domain.Item) Assessment {
	return Assessment{
		URL:             it.URL,
		Name:            it.Name,
		Description:     it.Description,
		DurationMinutes: it.DurationMinutes,
		TestTypes:       it.TestTypes,
		Remote:          it.Remote == domain.TriYes,
		Adaptive:        it.Adaptive == domain.TriYes,
	}
}

func itemFromAssessment(a Assessment, ordinal int) domain.Item {
	remote := domain.TriNo
	if a.Remote {
		remote = domain.TriYes
	}
	adaptive := domain.TriNo
	if a.Adaptive {
		adaptive = domain.TriYes
	}
	return domain.Item{
		URL:             a.URL,
		Name:            a.Name,
		Description:     a.Description,
		DurationMinutes: a.DurationMinutes,
		TestTypes:       a.TestTypes,
		Remote:          remote,
		Adaptive:        adaptive,
		Ordinal:         ordinal,
	}
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(interface{ HealthCheck(context.Context) error }); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
