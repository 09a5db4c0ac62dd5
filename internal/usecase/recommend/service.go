// Package recommend implements the ranking engine: constraint extraction,
// over-fetched similarity retrieval, hard filtering, hybrid scoring, and
// result memoization.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/assessdex/assessdex/internal/domain"
	"github.com/assessdex/assessdex/internal/metrics"
)

// Soft constraint scoring. The base applies to every surviving candidate so
// that queries without soft signals rank purely by similarity.
const (
	softBase        = 0.5
	remoteBonus     = 0.2
	adaptiveBonus   = 0.15
	keywordBonusCap = 0.3
)

// Params are the tunable ranking knobs, surfaced through configuration.
type Params struct {
	// Alpha weighs semantic similarity against the soft constraint score.
	Alpha float64
	// OverfetchMultiplier and OverfetchFloor size the candidate pool
	// retrieved before hard filtering: N = max(maxResults*mult, floor).
	OverfetchMultiplier int
	OverfetchFloor      int
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{Alpha: 0.7, OverfetchMultiplier: 5, OverfetchFloor: 20}
}

// Service is the recommendation engine consumed by the HTTP layer.
type Service struct {
	retriever Retriever
	extractor Extractor
	cache     ResultCache
	params    Params
	logger    *zap.Logger
}

// New creates the ranking engine. cache may be nil to disable memoization.
func New(retriever Retriever, extractor Extractor, cache ResultCache, params Params, logger *zap.Logger) *Service {
	if params.Alpha <= 0 || params.Alpha > 1 {
		params.Alpha = DefaultParams().Alpha
	}
	if params.OverfetchMultiplier <= 0 {
		params.OverfetchMultiplier = DefaultParams().OverfetchMultiplier
	}
	if params.OverfetchFloor <= 0 {
		params.OverfetchFloor = DefaultParams().OverfetchFloor
	}
	return &Service{
		retriever: retriever,
		extractor: extractor,
		cache:     cache,
		params:    params,
		logger:    logger,
	}
}

// Recommend returns up to maxResults items ranked by the blended score.
// Zero survivors of hard filtering is an empty result, not an error.
func (s *Service) Recommend(ctx context.Context, query string, maxResults int) ([]domain.Recommendation, error) {
	start := time.Now()

	if maxResults <= 0 {
		metrics.RecommendRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: max_results must be >= 1, got %d", domain.ErrInvalidRequest, maxResults)
	}
	if strings.TrimSpace(query) == "" {
		metrics.RecommendRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidRequest)
	}

	key := cacheKey(query, maxResults)

	// Generation is captured before computing so that a result computed
	// against a pre-rebuild snapshot can never be served afterwards.
	generation := s.retriever.Generation()

	if s.cache != nil {
		if recs, ok := s.cache.Get(key, generation); ok {
			metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
			metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()
			metrics.RecommendDuration.Observe(time.Since(start).Seconds())
			return recs, nil
		}
		metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
	}

	constraints := s.extractor.Extract(query)

	topK := maxResults * s.params.OverfetchMultiplier
	if topK < s.params.OverfetchFloor {
		topK = s.params.OverfetchFloor
	}

	candidates, err := s.retriever.Query(ctx, query, topK)
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, domain.ErrIndexNotReady) {
			return nil, err
		}
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	recs := s.rank(candidates, constraints, maxResults)

	s.logger.Debug("recommendation computed",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(recs)),
		zap.Int("max_duration", constraints.MaxDurationMinutes),
		zap.Strings("required_types", constraints.RequiredTypes),
	)

	if s.cache != nil {
		s.cache.Add(key, generation, recs)
	}

	status := "ok"
	if len(recs) == 0 {
		status = "empty"
	}
	metrics.RecommendRequestsTotal.WithLabelValues(status).Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	return recs, nil
}

// rank applies hard filters, scores the survivors, and orders them.
func (s *Service) rank(candidates []domain.Candidate, constraints domain.ConstraintSet, maxResults int) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, c := range candidates {
		if _, dup := seen[c.Item.URL]; dup {
			continue
		}
		if !passesHardFilters(c.Item, constraints) {
			continue
		}
		seen[c.Item.URL] = struct{}{}

		soft := softBase
		if constraints.HasSoft() {
			soft = constraintScore(c.Item, constraints)
		}
		recs = append(recs, domain.Recommendation{
			Item:            c.Item,
			Similarity:      c.Similarity,
			ConstraintScore: soft,
			FinalScore:      s.params.Alpha*c.Similarity + (1-s.params.Alpha)*soft,
		})
	}

	// Final score desc, then raw similarity desc, then catalog order.
	// Catalog order (not URL) keeps runs reproducible for identical inputs.
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].FinalScore != recs[j].FinalScore {
			return recs[i].FinalScore > recs[j].FinalScore
		}
		if recs[i].Similarity != recs[j].Similarity {
			return recs[i].Similarity > recs[j].Similarity
		}
		return recs[i].Item.Ordinal < recs[j].Item.Ordinal
	})

	if len(recs) > maxResults {
		recs = recs[:maxResults]
	}
	return recs
}

// passesHardFilters enforces duration and type constraints. An unknown
// duration passes, to avoid over-filtering on missing catalog data.
func passesHardFilters(item domain.Item, c domain.ConstraintSet) bool {
	if c.HasDuration() && item.DurationKnown() && item.DurationMinutes > c.MaxDurationMinutes {
		return false
	}
	if c.HasTypes() && !item.HasAnyType(c.RequiredTypes) {
		return false
	}
	return true
}

// constraintScore computes the soft match score in [0,1]: a neutral base
// plus a bonus per satisfied soft signal.
func constraintScore(item domain.Item, c domain.ConstraintSet) float64 {
	score := softBase
	if c.RemoteRequired && item.Remote == domain.TriYes {
		score += remoteBonus
	}
	if c.AdaptiveRequired && item.Adaptive == domain.TriYes {
		score += adaptiveBonus
	}
	if len(c.Keywords) > 0 {
		score += keywordBonusCap * keywordOverlap(item, c.Keywords)
	}
	if score > 1 {
		score = 1
	}
	return score
}

// keywordOverlap returns the fraction of query keywords present in the
// item's name or description.
func keywordOverlap(item domain.Item, keywords []string) float64 {
	text := strings.ToLower(item.Name + " " + item.Description)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// cacheKey normalizes the query (lower case, collapsed whitespace) and
// appends maxResults.
func cacheKey(query string, maxResults int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return normalized + "|" + strconv.Itoa(maxResults)
}
